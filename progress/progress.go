package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
)

// Reporter is advanced once per unit of work and closed when the work is done.
type Reporter interface {
	Advance()
	Done()
}

const dotsPerLine = 80

// Dots prints a dot per unit of work, starting a fresh timestamped line every 80 dots.
type Dots struct {
	mu    sync.Mutex
	w     io.Writer
	count int
	now   func() time.Time
}

func NewDots(w io.Writer) *Dots {
	return &Dots{w: w, now: time.Now}
}

func (d *Dots) Advance() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.count <= dotsPerLine {
		fmt.Fprint(d.w, ".")
		d.count++
		return
	}
	fmt.Fprintf(d.w, "\n[%s] .", d.now().Format("15:04:05"))
	d.count = 1
}

func (d *Dots) Done() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.count > 0 {
		fmt.Fprintln(d.w)
	}
	d.count = 0
}

// Bar wraps a terminal progress bar sized to a known amount of work.
type Bar struct {
	bar *pb.ProgressBar
}

func NewBar(w io.Writer, total int) *Bar {
	bar := pb.New(total)
	bar.SetWriter(w)
	bar.Start()
	return &Bar{bar: bar}
}

func (b *Bar) Advance() {
	b.bar.Increment()
}

func (b *Bar) Done() {
	b.bar.Finish()
}

// Discard ignores progress.
type Discard struct{}

func (Discard) Advance() {}
func (Discard) Done()    {}
