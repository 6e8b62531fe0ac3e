package storage

import (
	"context" // Cancellation of running uploads
	"io"      // Readers
	"sync"    // Cancel once
)

// Progress is reported while an upload runs. The last report carries either
// DownloadURL (Percent is 100) or Err.
type Progress struct {
	Percent          float64 // 0..100
	BytesTransferred int64
	TotalBytes       int64
	DownloadURL      string
	Err              error
}

// UploadTask is a running upload
type UploadTask struct {
	path   string
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	url string
	err error
}

// Upload streams r to store at path in the background. size is the expected
// length used for progress; onProgress may be nil. A failed or cancelled
// upload leaves whatever was stored at path before untouched, since Put
// never commits a partial object.
func Upload(ctx context.Context, store ObjectStore, path string, r io.Reader, size int64, onProgress func(Progress)) *UploadTask {
	ctx, cancel := context.WithCancel(ctx)
	task := &UploadTask{path: path, cancel: cancel, done: make(chan struct{})}
	report := func(p Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	go func() {
		defer close(task.done)
		defer cancel()

		pr := &progressReader{r: r, total: size, report: report}
		n, err := store.Put(ctx, path, pr)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr // Report the cancellation, not the read error it caused
			}
			task.err = err
			report(Progress{BytesTransferred: n, TotalBytes: size, Err: err})
			return
		}
		task.url = store.URL(path)
		report(Progress{Percent: 100, BytesTransferred: n, TotalBytes: size, DownloadURL: task.url})
	}()
	return task
}

// Path is the object path the task writes to
func (t *UploadTask) Path() string {
	return t.path
}

// Cancel aborts the upload. It is safe to call more than once and after completion.
func (t *UploadTask) Cancel() {
	t.once.Do(t.cancel)
}

// Wait blocks until the upload finishes and returns the download URL
func (t *UploadTask) Wait() (string, error) {
	<-t.done
	return t.url, t.err
}

type progressReader struct {
	r           io.Reader
	total       int64
	transferred int64
	report      func(Progress)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.transferred += int64(n)
		var pct float64
		if p.total > 0 {
			pct = float64(p.transferred) / float64(p.total) * 100
			if pct > 100 {
				pct = 100 // Size was understated
			}
		}
		p.report(Progress{Percent: pct, BytesTransferred: p.transferred, TotalBytes: p.total})
	}
	return n, err
}
