package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/therealutkarshpriyadarshi/vidshare/internal/config"
)

func TestInitDisabledUsesNoopTracer(t *testing.T) {
	closer, err := Init(appconfig.TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())

	_, ok := opentracing.GlobalTracer().(opentracing.NoopTracer)
	assert.True(t, ok)
}

func TestFinishRecordsError(t *testing.T) {
	tracer := mocktracer.New()
	opentracing.SetGlobalTracer(tracer)
	t.Cleanup(func() { opentracing.SetGlobalTracer(opentracing.NoopTracer{}) })

	span, ctx := StartSpan(context.Background(), "query.video_feed")
	require.NotNil(t, opentracing.SpanFromContext(ctx))
	SetTag(span, "pipeline", "video_feed")
	Finish(span, errors.New("boom"))

	spans := tracer.FinishedSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "query.video_feed", spans[0].OperationName)
	assert.Equal(t, true, spans[0].Tag("error"))
	assert.Equal(t, "video_feed", spans[0].Tag("pipeline"))
}

func TestHelpersTolerateNilSpan(t *testing.T) {
	FinishSpan(nil)
	LogError(nil, errors.New("x"))
	SetTag(nil, "k", "v")
}
