// Package events provides the in-process publish/subscribe bus that lets the
// discovery layer hand newly found videos to the lifecycle engine without a
// compile-time dependency between the two.
package events
