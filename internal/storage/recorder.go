package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"liquidityZap/internal/model"
	"liquidityZap/internal/zapper"
)

// Recorder adapts a Storage sink to the zapper notification interface. Sink
// failures are logged, not propagated: the operation is already committed
// when the event fires.
type Recorder struct {
	sink   Storage
	logger *zap.Logger
}

func NewRecorder(sink Storage, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{sink: sink, logger: logger}
}

func (r *Recorder) ZapInExecuted(ctx context.Context, event zapper.EntryEvent) {
	record := model.ZapRecord{
		Kind:            "zap_in",
		Caller:          event.Caller.Hex(),
		Pair:            event.Pair.Hex(),
		TokenA:          event.TokenA.Hex(),
		TokenB:          event.TokenB.Hex(),
		Token:           event.InputToken.Hex(),
		AmountIn:        event.AmountIn.String(),
		LiquidityMinted: event.LiquidityMinted.String(),
		Timestamp:       time.Now().Unix(),
	}
	if err := r.sink.PutZapRecords(ctx, []model.ZapRecord{record}); err != nil {
		r.logger.Warn("zap-in history write failed", zap.Error(err))
	}
}

func (r *Recorder) ZapOutExecuted(ctx context.Context, event zapper.ExitEvent) {
	record := model.ZapRecord{
		Kind:        "zap_out",
		Caller:      event.Caller.Hex(),
		Pair:        event.Pair.Hex(),
		TokenA:      event.TokenA.Hex(),
		TokenB:      event.TokenB.Hex(),
		Token:       event.OutputToken.Hex(),
		LiquidityIn: event.LiquidityIn.String(),
		AmountOut:   event.AmountOut.String(),
		Timestamp:   time.Now().Unix(),
	}
	if err := r.sink.PutZapRecords(ctx, []model.ZapRecord{record}); err != nil {
		r.logger.Warn("zap-out history write failed", zap.Error(err))
	}
}
