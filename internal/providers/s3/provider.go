package s3

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"reel/internal/asset"
	"reel/internal/config"
	"reel/internal/fileutil"
	"reel/internal/logging"
	"reel/internal/services"
	"reel/internal/textutil"
	"reel/internal/transform"

	"reel/internal/store"
)

// ProviderName is the registry key for the object-store backend.
const ProviderName = "s3"

// API is the subset of the S3 client the provider uses.
type API interface {
	PutObject(ctx context.Context, in *awss3.PutObjectInput, opts ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *awss3.HeadBucketInput, opts ...func(*awss3.Options)) (*awss3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *awss3.CreateBucketInput, opts ...func(*awss3.Options)) (*awss3.CreateBucketOutput, error)
	PutBucketCors(ctx context.Context, in *awss3.PutBucketCorsInput, opts ...func(*awss3.Options)) (*awss3.PutBucketCorsOutput, error)
	DeletePublicAccessBlock(ctx context.Context, in *awss3.DeletePublicAccessBlockInput, opts ...func(*awss3.Options)) (*awss3.DeletePublicAccessBlockOutput, error)
}

// Provider delivers videos to any S3-compatible object store. Unlike the
// direct-upload backend there is no asynchronous processing step: once the
// put completes the asset goes straight from uploading to ready. Object keys
// are derived deterministically from the source, so an interrupted upload is
// resumed by simply re-running the put and overwriting the partial object.
type Provider struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger

	httpClient *http.Client

	mu     sync.Mutex
	client API
}

// New builds the object-store provider with a lazily constructed S3 client.
// There is no throttle queue here: pacing applies to job-creation calls, and
// this backend only ever moves raw bytes.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Provider {
	return &Provider{
		cfg:        cfg,
		store:      st,
		logger:     logging.NewComponentLogger(logger, "s3"),
		httpClient: http.DefaultClient,
	}
}

// NewWithClient builds the provider around an existing client. Tests use this
// to substitute a fake API.
func NewWithClient(cfg *config.Config, st *store.Store, logger *slog.Logger, client API) *Provider {
	p := New(cfg, st, logger)
	p.client = client
	return p
}

// Name implements providers.Provider.
func (p *Provider) Name() string { return ProviderName }

// UploadLocalFile streams a local video into the configured bucket and marks
// the asset ready with its public object URL.
func (p *Provider) UploadLocalFile(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
	if a.IsTerminal() {
		return a, nil
	}
	path := p.resolveLocalPath(a.OriginalFilePath)
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "s3", "upload", "open source file", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat source file: %w", err)
	}
	return p.putAndFinish(ctx, a, file, info.Size(), path)
}

// UploadRemoteFile fetches a remote source into a temp file and re-streams it
// into the bucket; object stores have no ingest-by-URL API.
func (p *Provider) UploadRemoteFile(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
	if a.IsTerminal() {
		return a, nil
	}
	path, size, err := fileutil.DownloadToTemp(ctx, p.httpClient, a.OriginalFilePath)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "s3", "fetch", "download remote source", err)
	}
	defer os.Remove(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reopen downloaded file: %w", err)
	}
	defer file.Close()
	return p.putAndFinish(ctx, a, file, size, a.OriginalFilePath)
}

// putAndFinish is the shared tail of both upload paths: persist uploading
// with the object coordinates, stream the bytes, then persist ready with the
// derived playback source. The put is a raw byte transfer, so it runs
// directly; concurrent assets upload in parallel.
func (p *Provider) putAndFinish(ctx context.Context, a *asset.Asset, body *os.File, size int64, contentName string) (*asset.Asset, error) {
	client, err := p.ensureClient(ctx)
	if err != nil {
		return nil, err
	}

	bucket := p.cfg.S3.Bucket
	key := p.objectKey(a.OriginalFilePath)
	if _, err := p.store.Update(ctx, a.OriginalFilePath, map[string]any{
		"status": asset.StatusUploading,
		"size":   size,
		"providerMetadata": map[string]any{
			ProviderName: map[string]any{
				"bucket":   bucket,
				"key":      key,
				"endpoint": p.endpoint(),
			},
		},
	}); err != nil {
		return nil, err
	}

	_, err = client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(fileutil.ContentTypeForName(contentName)),
	})
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "s3", "put",
			fmt.Sprintf("upload %s to bucket %s", key, bucket), err)
	}
	p.logger.Info("object uploaded",
		logging.String(logging.FieldSource, a.OriginalFilePath),
		logging.String("key", key),
		logging.Int64("size", size))

	current, err := p.store.Get(ctx, a.OriginalFilePath)
	if err != nil {
		return nil, err
	}
	derived := transform.S3(p.cfg.S3.PublicBaseURL)(*current)
	updated, err := p.store.Update(ctx, a.OriginalFilePath, map[string]any{
		"status":  asset.StatusReady,
		"sources": derived.Sources,
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// EnsureBucket provisions the configured bucket if it does not exist yet and
// opens it for cross-origin playback reads.
func (p *Provider) EnsureBucket(ctx context.Context) error {
	client, err := p.ensureClient(ctx)
	if err != nil {
		return err
	}
	bucket := aws.String(p.cfg.S3.Bucket)

	if _, err := client.HeadBucket(ctx, &awss3.HeadBucketInput{Bucket: bucket}); err == nil {
		return nil
	}

	input := &awss3.CreateBucketInput{Bucket: bucket}
	if region := p.cfg.S3.Region; region != "" && region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := client.CreateBucket(ctx, input); err != nil {
		return services.Wrap(services.ErrConfiguration, "s3", "ensure-bucket",
			fmt.Sprintf("create bucket %s", p.cfg.S3.Bucket), err)
	}

	// Objects must be publicly readable for direct playback. Custom endpoints
	// (B2, MinIO) do not implement the access-block API, so failures there are
	// logged and ignored.
	if _, err := client.DeletePublicAccessBlock(ctx, &awss3.DeletePublicAccessBlockInput{Bucket: bucket}); err != nil {
		p.logger.Warn("remove public access block", logging.Error(err))
	}

	_, err = client.PutBucketCors(ctx, &awss3.PutBucketCorsInput{
		Bucket: bucket,
		CORSConfiguration: &types.CORSConfiguration{
			CORSRules: []types.CORSRule{{
				AllowedMethods: []string{http.MethodGet},
				AllowedOrigins: []string{"*"},
			}},
		},
	})
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "s3", "ensure-bucket",
			fmt.Sprintf("set CORS on bucket %s", p.cfg.S3.Bucket), err)
	}
	p.logger.Info("bucket provisioned", logging.String("bucket", p.cfg.S3.Bucket))
	return nil
}

// objectKey derives the deterministic bucket key for a source. The same
// source always maps to the same key, which is what makes interrupted
// uploads safe to restart.
func (p *Provider) objectKey(source string) string {
	return textutil.SanitizeKey(source)
}

// endpoint returns the URL prefix objects are served from, used by the
// playback transformer when no public base URL is configured.
func (p *Provider) endpoint() string {
	if endpoint := strings.TrimRight(p.cfg.S3.Endpoint, "/"); endpoint != "" {
		return endpoint
	}
	region := p.cfg.S3.Region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://s3.%s.amazonaws.com", region)
}

func (p *Provider) resolveLocalPath(source string) string {
	if filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(p.cfg.Paths.VideosDir, source)
}

func (p *Provider) ensureClient(ctx context.Context) (API, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	if strings.TrimSpace(p.cfg.S3.Bucket) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "s3", "client", "s3.bucket is not set", nil)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(p.cfg.S3.Region),
	}
	if p.cfg.S3.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(p.cfg.S3.AccessKeyID, p.cfg.S3.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "s3", "client", "load credentials", err)
	}

	p.client = awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if p.cfg.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(p.cfg.S3.Endpoint)
		}
		o.UsePathStyle = p.cfg.S3.ForcePathStyle
	})
	return p.client, nil
}
