/*
Package decoder turns raw font bytes into a parsed font.

Decoding may be a time-consuming task, therefore functions in this package
work in an async/await fashion by returning a promise. Functions named

	Decode…(…)

return a FontPromise, which the client will call later to receive the
parsed font. The call to the promise-function will then block until
decoding has completed. Decoding itself runs on a separate goroutine, so
the caller's current turn is never blocked by the structural parse.

Before parsing, a compressed container (WOFF2, WOFF) is detected by its
signature and unpacked. This step may be switched off with Options.Raw;
compressed bytes are then handed to the parser as they are, which will
reject them.

There is no way to interrupt a running parse. Clients which are no longer
interested in a result simply stop waiting for it (see FontPromise.Await).

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package decoder

import (
	"context"
	"io"
	"os"

	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/kernstyle/core/font"
	"github.com/npillmayer/kernstyle/core/font/woff"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'kernstyle.font'
func tracer() tracing.Trace {
	return tracing.Select("kernstyle.font")
}

// Options controls decoding. The zero value unpacks compressed containers.
type Options struct {
	Raw bool // hand bytes to the parser without unpacking containers
}

// DefaultOptions returns the options used if clients do not care.
func DefaultOptions() Options {
	return Options{}
}

// FontPromise is the result of an asynchronous decode.
type FontPromise interface {
	Font() (*font.ScalableFont, error)
	Await(ctx context.Context) (*font.ScalableFont, error)
}

type fontPlusErr struct {
	font *font.ScalableFont
	err  error
}

type fontLoader struct {
	await func(ctx context.Context) (*font.ScalableFont, error)
}

func (loader fontLoader) Font() (*font.ScalableFont, error) {
	return loader.await(context.Background())
}

func (loader fontLoader) Await(ctx context.Context) (*font.ScalableFont, error) {
	return loader.await(ctx)
}

// Decode decodes a font binary. The returned font owns fbytes if they have
// not been packaged in a compressed container.
func Decode(fbytes []byte, opts Options) FontPromise {
	return decodeAsync(func() ([]byte, error) { return fbytes, nil }, opts)
}

// DecodeFrom reads a font binary from r and decodes it. Reading happens
// asynchronously, too.
func DecodeFrom(r io.Reader, opts Options) FontPromise {
	return decodeAsync(func() ([]byte, error) {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, core.WrapError(err, core.EMISSING, "cannot read font data")
		}
		return b, nil
	}, opts)
}

// DecodeFile reads and decodes a font file.
func DecodeFile(path string, opts Options) FontPromise {
	p := decodeAsync(func() ([]byte, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, core.WrapError(err, core.EMISSING, "cannot read font file %s", path)
		}
		return b, nil
	}, opts)
	return withPath{FontPromise: p, path: path}
}

func decodeAsync(read func() ([]byte, error), opts Options) FontPromise {
	ch := make(chan fontPlusErr, 1) // buffered: abandoned results must not leak the goroutine
	go func(ch chan<- fontPlusErr) {
		result := fontPlusErr{}
		defer close(ch)
		b, err := read()
		if err != nil {
			result.err = err
			ch <- result
			return
		}
		result.font, result.err = decode(b, opts)
		ch <- result
	}(ch)
	return fontLoader{
		await: func(ctx context.Context) (*font.ScalableFont, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case r, ok := <-ch:
				if !ok {
					return nil, core.Error(core.EINTERNAL, "font promise has already been consumed")
				}
				return r.font, r.err
			}
		},
	}
}

func decode(b []byte, opts Options) (*font.ScalableFont, error) {
	if !opts.Raw {
		c := woff.Detect(b)
		if c == woff.WOFF || c == woff.WOFF2 {
			tracer().Debugf("font data is packaged as %s", c)
			unwrapped, err := woff.Unwrap(b)
			if err != nil {
				return nil, err
			}
			b = unwrapped
		}
	}
	f, err := font.ParseOpenTypeFont(b)
	if err != nil {
		tracer().Infof("font data rejected by parser: %v", err)
		return nil, err
	}
	return f, nil
}

type withPath struct {
	FontPromise
	path string
}

func (p withPath) Font() (*font.ScalableFont, error) {
	return p.Await(context.Background())
}

func (p withPath) Await(ctx context.Context) (*font.ScalableFont, error) {
	f, err := p.FontPromise.Await(ctx)
	if f != nil {
		f.Filepath = p.path
	}
	return f, err
}
