package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MKhiriev/go-dam-sync/internal/logger"
	"github.com/go-resty/resty/v2"
)

// ProgressFunc receives transfer progress as a percentage in [0, 100].
type ProgressFunc func(percent int)

// Uploader streams local files to the object-storage endpoint named in an
// upload ticket. It performs a single PUT per ticket; there is no
// partial-upload resume.
type Uploader struct {
	client *resty.Client
	logger *logger.Logger
}

// NewUploader constructs an object-storage uploader with the given
// per-upload timeout.
func NewUploader(timeout time.Duration, log *logger.Logger) *Uploader {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Uploader{
		client: resty.New().SetTimeout(timeout),
		logger: log,
	}
}

// Upload streams the file at filePath to ticket.UploadURL, authenticating
// with the tenant's object-storage credentials. progress, if non-nil, is
// invoked whenever the transferred percentage advances.
func (u *Uploader) Upload(ctx context.Context, ticket UploadTicket, info S3Info, filePath string, progress ProgressFunc) error {
	if ticket.UploadURL == "" {
		return errors.New("upload ticket has no endpoint address")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open upload source: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat upload source: %w", err)
	}

	body := &progressReader{
		r:        file,
		total:    stat.Size(),
		lastPct:  -1,
		progress: progress,
	}

	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetHeader("X-Object-Key", ticket.Key).
		SetHeader("X-Storage-Bucket", info.Bucket).
		SetHeader("X-Storage-Region", info.Region).
		SetHeader("X-Access-Key", info.Key).
		SetHeader("X-Access-Secret", info.Secret).
		SetContentLength(true).
		SetBody(body).
		Put(ticket.UploadURL)
	if err != nil {
		return fmt.Errorf("upload request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	if progress != nil && body.lastPct < 100 {
		progress(100)
	}
	return nil
}

// progressReader reports percentage progress as the wrapped reader is
// consumed. When the total size is unknown it stays silent; the caller gets
// a single 100% event after completion.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	lastPct  int
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.progress != nil && p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.lastPct {
			p.lastPct = pct
			p.progress(pct)
		}
	}
	return n, err
}
