package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/postbridge/configs"
	"github.com/maheshrc27/postbridge/internal/models"
)

type r2Objects interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type r2Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type R2Service struct {
	config cfg.R2
	client *http.Client
}

func NewR2Service(r2 cfg.R2, client *http.Client) *R2Service {
	return &R2Service{config: r2, client: client}
}

func (r *R2Service) R2Client(ctx context.Context) (*s3.Client, error) {
	if r.config.AccountID == "" || r.config.BucketName == "" {
		return nil, errors.New("R2 account id and bucket name are required")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.AccessKey, r.config.SecretKey, "")),
		config.WithRegion("auto"),
	}
	if r.client != nil {
		opts = append(opts, config.WithHTTPClient(r.client))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.AccountID))
	}), nil
}

// Open builds a session over the account folder. R2 keys are static, so there
// is no token exchange.
func (r *R2Service) Open(ctx context.Context, acc models.Account) (StorageSession, error) {
	client, err := r.R2Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	ttl := r.config.LinkTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &r2Session{
		bucket:    r.config.BucketName,
		prefix:    r2Prefix(acc.Folder),
		ttl:       ttl,
		objects:   client,
		presigner: s3.NewPresignClient(client),
	}, nil
}

func r2Prefix(folder string) string {
	prefix := strings.TrimPrefix(folder, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

type r2Session struct {
	bucket    string
	prefix    string
	ttl       time.Duration
	objects   r2Objects
	presigner r2Presigner
}

func (s *r2Session) ListEligibleFiles(ctx context.Context) ([]models.MediaFile, error) {
	var eligible []models.MediaFile
	var token *string

	for {
		out, err := s.objects.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			Delimiter:         aws.String("/"),
			ContinuationToken: token,
		})
		if err != nil {
			slog.Info(err.Error())
			return nil, fmt.Errorf("%w: %s: %w", ErrList, s.prefix, err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			if f, ok := NewMediaFile(path.Base(key), key); ok {
				eligible = append(eligible, f)
			}
		}

		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}

	return eligible, nil
}

func (s *r2Session) TemporaryLink(ctx context.Context, file models.MediaFile) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(file.Path),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("error presigning %s: %w", file.Name, err)
	}
	return req.URL, nil
}

func (s *r2Session) Delete(ctx context.Context, file models.MediaFile) error {
	_, err := s.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(file.Path),
	})
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("%w: %s: %w", ErrDelete, file.Path, err)
	}
	return nil
}
