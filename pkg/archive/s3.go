package archive

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pugstats/pugstats/pkg/match"
)

// NoUploadText takes the share link's place in the notification when
// archival was disabled, timed out, or failed.
const NoUploadText = "No file uploaded"

const shareLinkTTL = 7 * 24 * time.Hour

// DemoSource provides raw replay bytes for a finished match.
// *dathost.Client satisfies this.
type DemoSource interface {
	DemoFile(ctx context.Context, gameServerID, matchID string) (io.ReadCloser, error)
}

// Uploader copies match replays off the game-server host into long-term
// object storage and issues presigned share links for them.
type Uploader struct {
	bucket    string
	demos     DemoSource
	uploader  *manager.Uploader
	presigner *s3.PresignClient
}

func NewUploader(ctx context.Context, region, bucket string, demos DemoSource) (*Uploader, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg)
	return &Uploader{
		bucket:    bucket,
		demos:     demos,
		uploader:  manager.NewUploader(client),
		presigner: s3.NewPresignClient(client),
	}, nil
}

// ArchiveReplay streams the replay from the game server into the bucket
// under a deterministic date/map/match key and returns a presigned GET
// link. The transfer can take minutes for long matches; the caller's
// context carries the deadline.
func (u *Uploader) ArchiveReplay(ctx context.Context, gameServerID, matchID, mapName string) (string, error) {
	demo, err := u.demos.DemoFile(ctx, gameServerID, matchID)
	if err != nil {
		return "", err
	}
	defer demo.Close()

	key := archiveKey(time.Now(), mapName, matchID)
	log.Printf("Uploading %s...", key)
	_, err = u.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   demo,
	})
	if err != nil {
		return "", match.ExternalServiceError{Service: "replay archive", Err: err}
	}
	log.Printf("Uploaded %s successfully", key)

	presigned, err := u.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(shareLinkTTL))
	if err != nil {
		return "", match.ExternalServiceError{Service: "replay archive", Err: err}
	}
	return presigned.URL, nil
}

func archiveKey(now time.Time, mapName, matchID string) string {
	return fmt.Sprintf("%d-%d-%d_pug_%s_%s.dem", now.Year(), int(now.Month()), now.Day(), mapName, matchID)
}
