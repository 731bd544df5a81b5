package program

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type trace struct {
	steps []string
}

var traceHook = NewHook[*trace]("TRACE")

func step(name string) Handler[*trace] {
	return func(ctx context.Context, c *trace) (*trace, error) {
		c.steps = append(c.steps, name)
		return c, nil
	}
}

type pluginFunc struct {
	name  string
	apply func(p *Program) error
}

func (f pluginFunc) Name() string           { return f.name }
func (f pluginFunc) Apply(p *Program) error { return f.apply(p) }

func TestKey(t *testing.T) {
	t.Parallel()
	require.Equal(t, "__BEFORE__::PARSE_ENTRY", Key(PhaseBefore, ParseEntry.Name()))
	require.Equal(t, "__ON__::WRITE_FILE", Key(PhaseOn, WriteFile.Name()))
	require.Equal(t, "__AFTER__::GEN_MOCK_FIELD", Key(PhaseAfter, GenMockField.Name()))
}

func TestTriggerOrder(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		register func(p *Program)
		expected []string
	}{
		{
			name: "phases run before on after",
			register: func(p *Program) {
				Register(p, traceHook, PhaseAfter, step("after"))
				Register(p, traceHook, PhaseOn, step("on"))
				Register(p, traceHook, PhaseBefore, step("before"))
			},
			expected: []string{"before", "on", "after"},
		},
		{
			name: "lower priority first regardless of registration order",
			register: func(p *Program) {
				Register(p, traceHook, PhaseOn, step("p1"), 1)
				Register(p, traceHook, PhaseOn, step("p0"), 0)
			},
			expected: []string{"p0", "p1"},
		},
		{
			name: "ties keep registration order",
			register: func(p *Program) {
				Register(p, traceHook, PhaseOn, step("a"))
				Register(p, traceHook, PhaseOn, step("b"))
				Register(p, traceHook, PhaseOn, step("c"), -1)
				Register(p, traceHook, PhaseOn, step("d"))
			},
			expected: []string{"c", "a", "b", "d"},
		},
		{
			name: "priority never crosses phases",
			register: func(p *Program) {
				Register(p, traceHook, PhaseOn, step("on"), -100)
				Register(p, traceHook, PhaseBefore, step("before"), 100)
				Register(p, traceHook, PhaseAfter, step("after"), -100)
			},
			expected: []string{"before", "on", "after"},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			p := New()
			testCase.register(p)
			out, err := Trigger(context.Background(), p, traceHook, &trace{})
			require.Nil(t, err)
			require.Equal(t, testCase.expected, out.steps)
		})
	}
}

func TestTriggerReplacesContext(t *testing.T) {
	t.Parallel()
	p := New()
	Register(p, traceHook, PhaseOn, func(ctx context.Context, c *trace) (*trace, error) {
		return &trace{steps: []string{"replaced"}}, nil
	})
	Register(p, traceHook, PhaseAfter, step("after"))
	in := &trace{steps: []string{"original"}}
	out, err := Trigger(context.Background(), p, traceHook, in)
	require.Nil(t, err)
	require.Equal(t, []string{"replaced", "after"}, out.steps)
	require.Equal(t, []string{"original"}, in.steps)
}

func TestTriggerWithoutHandlers(t *testing.T) {
	t.Parallel()
	p := New()
	Register(p, NewHook[*trace]("OTHER"), PhaseOn, step("x"))
	_, err := Trigger(context.Background(), p, traceHook, &trace{})
	require.NotNil(t, err)
	require.Equal(t, `no handler registered for hook "TRACE"`, err.Error())
}

func TestTriggerStopsOnError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	p, err := Create(pluginFunc{name: "failing", apply: func(p *Program) error {
		Register(p, traceHook, PhaseOn, func(ctx context.Context, c *trace) (*trace, error) {
			return c, boom
		})
		Register(p, traceHook, PhaseAfter, step("after"))
		return nil
	}})
	require.Nil(t, err)
	out, err := Trigger(context.Background(), p, traceHook, &trace{})
	require.NotNil(t, err)
	require.True(t, errors.Is(err, boom))
	require.Contains(t, err.Error(), "plugin failing")
	require.Empty(t, out.steps)
}

func TestTriggerTypeMismatch(t *testing.T) {
	t.Parallel()
	p := New()
	Register(p, NewHook[string]("TRACE"), PhaseOn, func(ctx context.Context, c string) (string, error) {
		return c, nil
	})
	_, err := Trigger(context.Background(), p, traceHook, &trace{})
	require.NotNil(t, err)
}

func TestLoadPlugins(t *testing.T) {
	t.Parallel()
	first := pluginFunc{name: "first", apply: func(p *Program) error {
		Register(p, traceHook, PhaseOn, step("first"))
		return nil
	}}
	second := pluginFunc{name: "second", apply: func(p *Program) error {
		Register(p, traceHook, PhaseOn, step("second"))
		return nil
	}}
	p, err := Create(first, second)
	require.Nil(t, err)
	out, err := Trigger(context.Background(), p, traceHook, &trace{})
	require.Nil(t, err)
	require.Equal(t, []string{"first", "second"}, out.steps)

	_, err = Create(pluginFunc{name: "bad", apply: func(p *Program) error {
		return errors.New("nope")
	}})
	require.NotNil(t, err)
	require.Equal(t, "apply plugin bad: nope", err.Error())
}

func TestRegistryHintOnce(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.WarnLevel)
	r := NewRegistry(zap.New(core).Sugar())
	require.True(t, r.HintOnce("mock", "hint"))
	require.False(t, r.HintOnce("mock", "hint"))
	require.True(t, r.HintOnce("other", "hint"))
	require.Equal(t, 2, logs.Len())

	// A fresh registry shows the hint again.
	require.True(t, NewRegistry(zap.New(core).Sugar()).HintOnce("mock", "hint"))
}
