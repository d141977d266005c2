package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carefulresume/cr/internal/congestion"
	"github.com/carefulresume/cr/qlog"
)

func TestCreateResumeConnectionTracer_DisabledReturnsNil(t *testing.T) {
	require.Nil(t, CreateResumeConnectionTracer("conn-1", false))
}

func TestCreateResumeConnectionTracer_EnabledLogsWithoutPanicking(t *testing.T) {
	tracer := CreateResumeConnectionTracer("conn-1", true)
	require.NotNil(t, tracer)

	phase := qlog.PhaseUnvalidated
	tracer.LogPhaseChange(&qlog.CarefulResumePhaseUpdated{
		New: phase,
		State: qlog.StateParameters{
			Pipesize: 1000,
			CRMark:   5,
			CWND:     20_500,
			Ssthresh: 0,
		},
		Trigger: qlog.TriggerCwndLimited,
	})
	tracer.LogJump(19_500, 50*time.Millisecond, 80_000)
	tracer.LogSafeRetreat(congestion.TriggerPacketLoss, 10_000)
	tracer.LogSample(congestion.Sample{MinRTT: 50 * time.Millisecond, CWND: 20_500})

	// A nil event is a documented no-op.
	tracer.LogPhaseChange(nil)
}
