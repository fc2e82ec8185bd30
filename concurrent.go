package pbstream

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kcheng/pbstream/field"
	"github.com/kcheng/pbstream/schema"
	"github.com/kcheng/pbstream/wire"
)

// DecodeAllConcurrent decodes each of payloads against sch on its own
// goroutine and returns the results in the same order. Each decode
// uses a fresh Decoder instance, so this is safe even though a single
// Decoder is documented as single-threaded (spec.md section 5): a
// batch of distinct instances is embarrassingly parallel, the same
// fan-out shape protoresolve.Converter.ConvertType uses to resolve a
// message's fields concurrently via errgroup.
func DecodeAllConcurrent(ctx context.Context, sch *schema.MessageSchema, payloads [][]byte) ([]*field.Message, error) {
	results := make([]*field.Message, len(payloads))
	grp, _ := errgroup.WithContext(ctx)
	for i, payload := range payloads {
		i, payload := i, payload
		grp.Go(func() error {
			dec := NewDecoder(sch)
			src := wire.FromBytes(payload)
			for {
				p, err := dec.Step(src)
				if err != nil {
					return err
				}
				if p.Done {
					results[i] = dec.Message()
					return nil
				}
			}
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// EncodeAllConcurrent encodes each of msgs on its own goroutine and
// returns the rendered bytes in the same order.
func EncodeAllConcurrent(ctx context.Context, msgs []*field.Message) ([][]byte, error) {
	results := make([][]byte, len(msgs))
	grp, _ := errgroup.WithContext(ctx)
	for i, msg := range msgs {
		i, msg := i, msg
		grp.Go(func() error {
			sink := wire.NewByteSink()
			if err := EncodeTo(sink, msg); err != nil {
				return err
			}
			results[i] = sink.Bytes()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
