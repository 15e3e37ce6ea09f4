package api

import (
	"io"
	"sync"

	"dms-go/internal/dms"
)

// progress turns byte counts into non-decreasing percentages. A total of
// zero or less means the size is unknown and only the final 100 is reported.
type progress struct {
	mu     sync.Mutex
	total  int64
	done   int64
	last   int
	report dms.ProgressFunc
}

func newProgress(total int64, report dms.ProgressFunc) *progress {
	p := &progress{total: total, last: -1, report: report}
	p.emit(0)
	return p
}

func (p *progress) add(n int) {
	if n <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done += int64(n)
	if p.total <= 0 {
		return
	}
	pct := int(p.done * 100 / p.total)
	if pct > 99 {
		// 100 is reserved for finish, once the server has answered.
		pct = 99
	}
	p.emitLocked(pct)
}

func (p *progress) finish() {
	p.emit(100)
}

func (p *progress) emit(pct int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emitLocked(pct)
}

func (p *progress) emitLocked(pct int) {
	if p.report == nil || pct <= p.last {
		return
	}
	p.last = pct
	p.report(pct)
}

func (p *progress) reader(r io.Reader) io.Reader {
	return &progressReader{r: r, p: p}
}

type progressReader struct {
	r io.Reader
	p *progress
}

func (r *progressReader) Read(b []byte) (int, error) {
	n, err := r.r.Read(b)
	r.p.add(n)
	return n, err
}
