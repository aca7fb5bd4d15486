package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
)

const archivePrefix = "enquiries"

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	now        func() time.Time
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region, now: time.Now}, nil
}

// archived is what lands in the bucket for each deleted enquiry
type archived struct {
	Enquiry    *domain.Enquiry `json:"enquiry"`
	ArchivedAt time.Time       `json:"archivedAt"`
}

// ArchiveKey is the object key an enquiry is archived under
func ArchiveKey(id domain.ID) string {
	return fmt.Sprintf("%s/%s.json", archivePrefix, id)
}

// Archive implementasi Archiver: simpan snapshot JSON sebelum dihapus
func (s *Store) Archive(ctx context.Context, e *domain.Enquiry) (string, error) {
	body, err := json.Marshal(archived{Enquiry: e, ArchivedAt: s.now().UTC()})
	if err != nil {
		return "", err
	}

	key := ArchiveKey(e.ID)
	_, err = s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("archiving enquiry %s: %w", e.ID, err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL().String(), s.bucketName, key)
	return url, nil
}

// Ping checks the archive bucket is reachable
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}
