package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"ledgerly-backend/internal/config"
	"ledgerly-backend/internal/models"
)

// ArchiveService uploads rendered invoice PDFs to S3-compatible
// storage. A nil service (unconfigured) is a no-op.
type ArchiveService struct {
	client *s3.Client
	bucket string
}

// NewArchiveService returns nil when archival storage is not
// configured
func NewArchiveService(cfg *config.Config) *ArchiveService {
	a := cfg.Archive
	if a.Bucket == "" || a.AccessKey == "" || a.SecretKey == "" {
		log.Println("[Archive] not configured, PDF archival disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.AccessKey,
			a.SecretKey,
			"",
		)),
		awsconfig.WithRegion(a.Region),
	)
	if err != nil {
		log.Printf("[Archive] client setup failed: %v", err)
		return nil
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if a.Endpoint != "" {
			o.BaseEndpoint = aws.String(a.Endpoint)
		}
	})

	return &ArchiveService{client: client, bucket: a.Bucket}
}

// StoreInvoicePDF uploads the rendered PDF under a per-user prefix
func (s *ArchiveService) StoreInvoicePDF(ctx context.Context, inv *models.Invoice, pdf []byte) error {
	if s == nil {
		return nil
	}

	key := fmt.Sprintf("invoices/%d/%s.pdf", inv.UserID, inv.Number)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pdf),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}

	log.Printf("[Archive] stored %s (%d bytes)", key, len(pdf))
	return nil
}
