package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrijs2005/dailyreflect/internal/client/client"
	"github.com/dmitrijs2005/dailyreflect/internal/common"
	"github.com/dmitrijs2005/dailyreflect/internal/cryptox"
	"github.com/dmitrijs2005/dailyreflect/internal/models"
)

// BlobAdapter keeps a user's whole collection in a single object,
// users/<id>/daily_reflections.json. Every write rewrites the object.
//
// With a passphrase set the object is sealed with cryptox before upload.
// Plain objects are still readable and get sealed on the next write.
type BlobAdapter struct {
	api        S3API
	bucket     string
	passphrase []byte

	// serializes read-modify-write cycles from this process
	mu sync.Mutex
}

var _ Adapter = (*BlobAdapter)(nil)

func NewBlobAdapter(api S3API, bucket string) *BlobAdapter {
	return &BlobAdapter{api: api, bucket: bucket}
}

// WithPassphrase turns on client-side encryption of the stored object.
func (a *BlobAdapter) WithPassphrase(p string) *BlobAdapter {
	if p != "" {
		a.passphrase = []byte(p)
	}
	return a
}

func (a *BlobAdapter) Name() string { return "s3" }

func userPrefix(user models.User) string {
	return path.Join("users", user.ID) + "/"
}

// ObjectKey is where the collection of user lives.
func ObjectKey(user models.User) string {
	return userPrefix(user) + common.ReflectionFileName
}

func (a *BlobAdapter) Pull(ctx context.Context, user models.User) ([]models.Reflection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	entries, err := a.read(ctx, user)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].UserID = user.ID
	}
	return entries, nil
}

func (a *BlobAdapter) Push(ctx context.Context, user models.User, entries []models.Reflection) error {
	if len(entries) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	current, err := a.read(ctx, user)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(current))
	for i, e := range current {
		index[e.ID] = i
	}
	for _, e := range forUser(user, entries) {
		if i, ok := index[e.ID]; ok {
			current[i] = e
			continue
		}
		index[e.ID] = len(current)
		current = append(current, e)
	}

	models.SortReflections(current)
	return a.write(ctx, user, current)
}

func (a *BlobAdapter) Delete(ctx context.Context, user models.User, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	current, err := a.read(ctx, user)
	if err != nil {
		return err
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := current[:0]
	for _, e := range current {
		if _, ok := drop[e.ID]; !ok {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(current) {
		return nil
	}
	return a.write(ctx, user, kept)
}

// find looks the object up by name under the user's prefix.
func (a *BlobAdapter) find(ctx context.Context, user models.User) (bool, error) {
	want := ObjectKey(user)
	p := s3.NewListObjectsV2Paginator(a.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(userPrefix(user)),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return false, fmt.Errorf("%w: list %s: %v", client.ErrUnavailable, want, err)
		}
		for _, obj := range page.Contents {
			if aws.ToString(obj.Key) == want {
				return true, nil
			}
		}
	}
	return false, nil
}

// read returns the stored collection, creating an empty object first if the
// user has none yet.
func (a *BlobAdapter) read(ctx context.Context, user models.User) ([]models.Reflection, error) {
	found, err := a.find(ctx, user)
	if err != nil {
		return nil, err
	}
	if !found {
		if err := a.write(ctx, user, nil); err != nil {
			return nil, err
		}
		return []models.Reflection{}, nil
	}

	out, err := a.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(ObjectKey(user)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", client.ErrUnavailable, ObjectKey(user), err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", client.ErrUnavailable, ObjectKey(user), err)
	}

	if cryptox.IsSealed(raw) {
		if a.passphrase == nil {
			return nil, fmt.Errorf("%s is encrypted, set s3_passphrase", ObjectKey(user))
		}
		if raw, err = cryptox.Open(raw, a.passphrase); err != nil {
			return nil, fmt.Errorf("open %s: %w", ObjectKey(user), err)
		}
	}

	entries, err := models.DecodeCollection(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ObjectKey(user), err)
	}
	return entries, nil
}

func (a *BlobAdapter) write(ctx context.Context, user models.User, entries []models.Reflection) error {
	raw, err := models.EncodeCollection(entries)
	if err != nil {
		return err
	}
	contentType := "application/json"
	if a.passphrase != nil {
		if raw, err = cryptox.Seal(raw, a.passphrase); err != nil {
			return fmt.Errorf("seal %s: %w", ObjectKey(user), err)
		}
		contentType = "application/octet-stream"
	}

	_, err = a.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(ObjectKey(user)),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("%w: put %s: %v", client.ErrUnavailable, ObjectKey(user), err)
	}
	return nil
}
