package scan

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// Decoder opens a feed of decoded tag values.
type Decoder interface {
	Open(ctx context.Context) (Feed, error)
}

// Feed yields decoded tag values until io.EOF.
type Feed interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// RunFeed acquires a feed from decoder, passes every value to fn and
// releases the feed on every exit path, including a panic in fn. A feed
// ending with io.EOF is a clean exit.
func RunFeed(ctx context.Context, decoder Decoder, fn func(ctx context.Context, value string) error) (err error) {
	feed, err := decoder.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := feed.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		value, err := feed.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(ctx, value); err != nil {
			return err
		}
	}
}

// LineDecoder reads one tag value per line. Blank lines are skipped.
type LineDecoder struct {
	open func() (io.ReadCloser, error)
}

// NewLineDecoder decodes lines from the reader returned by open.
func NewLineDecoder(open func() (io.ReadCloser, error)) *LineDecoder {
	return &LineDecoder{open: open}
}

// Open acquires the underlying reader.
func (d *LineDecoder) Open(context.Context) (Feed, error) {
	rc, err := d.open()
	if err != nil {
		return nil, err
	}
	return &lineFeed{rc: rc, scanner: bufio.NewScanner(rc)}, nil
}

type lineFeed struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
}

func (f *lineFeed) Next(ctx context.Context) (string, error) {
	for f.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line := strings.TrimSpace(f.scanner.Text())
		if line != "" {
			return line, nil
		}
	}
	if err := f.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (f *lineFeed) Close() error {
	return f.rc.Close()
}
