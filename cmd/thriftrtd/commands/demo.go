package commands

import (
	"bytes"
	"context"

	"github.com/marmos91/thriftrt/internal/logger"
	"github.com/marmos91/thriftrt/pkg/codec"
	"github.com/marmos91/thriftrt/pkg/runner"
)

// demoRunner builds the sample Runner thriftrtd serves: a "ping" method
// that replies with an empty struct, and an "echo" method that replies
// with the same struct bytes it was called with. Real deployments would
// register their own generated service handlers in place of this.
func demoRunner() runner.Runner {
	table := runner.NewTable()

	table.Register("ping", func(ctx context.Context, call runner.Call) ([]byte, error) {
		return buildEmptyReply(call.Method, call.SeqID)
	})

	table.Register("echo", func(ctx context.Context, call runner.Call) ([]byte, error) {
		var buf bytes.Buffer
		w := codec.NewWriter(&buf)
		if err := w.WriteMessageBegin(call.Method, codec.MessageReply, call.SeqID); err != nil {
			return nil, err
		}
		if _, err := buf.Write(call.Args); err != nil {
			return nil, err
		}
		logger.Debug("demo runner served echo", logger.Method(call.Method), logger.SeqID(call.SeqID))
		return buf.Bytes(), nil
	})

	return table
}

func buildEmptyReply(method string, seq int16) ([]byte, error) {
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)
	if err := w.WriteMessageBegin(method, codec.MessageReply, seq); err != nil {
		return nil, err
	}
	if err := w.WriteFieldStop(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
