package catalog

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/kbukum/rxlab/emitter"
	"github.com/kbukum/rxlab/stream"
)

// ErrRejected is the failure raised by the mapError pipeline.
var ErrRejected = stderrors.New("emission rejected")

// Default builds the standard catalog over the registry's A, B and C sources.
func Default(reg *emitter.Registry, t Timing) *Catalog {
	clock := reg.Scheduler()
	a := reg.MustSource("A").Observable
	b := reg.MustSource("B").Observable
	c := reg.MustSource("C").Observable

	var defs []Definition
	for _, s := range reg.Sources() {
		defs = append(defs, Definition{
			Name:        s.Name(),
			Kind:        KindSource,
			Description: s.Description,
			Observable:  Erase(s.Observable),
		})
	}

	pipeline := func(name, description string, o *stream.Observable[any]) {
		defs = append(defs, Definition{Name: name, Kind: KindPipeline, Description: description, Observable: o})
	}

	pipeline("take",
		fmt.Sprintf("First %d emissions of A, then complete", t.TakeCount),
		Erase(stream.Take(messages(a), t.TakeCount)))

	pipeline("takeWhile",
		fmt.Sprintf("A while its sequence is below %d", t.TakeWhileBelow),
		messagesAny(stream.TakeWhile(a, func(e emitter.Emission) bool { return e.Sequence < t.TakeWhileBelow })))

	pipeline("first",
		fmt.Sprintf("The A emission with sequence %d", t.FirstSequence),
		messagesAny(stream.FirstOr(a,
			func(e emitter.Emission) bool { return e.Sequence == t.FirstSequence },
			emitter.Emission{Sequence: -1, Message: "No value received"})))

	pipeline("filter", "Even A emissions only",
		messagesAny(stream.Filter(a, func(e emitter.Emission) bool { return e.Sequence%2 == 0 })))

	pipeline("takeUntil", "A until C emits",
		messagesAny(stream.TakeUntil(a, c)))

	pipeline("map", "A's sequence doubled",
		Erase(stream.Map(a, func(e emitter.Emission) (string, error) {
			return fmt.Sprint(e.Sequence * 2), nil
		})))

	pipeline("tap", "Logs each A emission as a side effect",
		messagesAny(stream.Tap(a, func(e emitter.Emission) {
			if sink := reg.Sink(); sink != nil {
				sink.Append("Tap: " + e.Message)
			}
		})))

	pipeline("distinctUntilChanged", "A's sequence divided by 3, repeats dropped",
		Erase(stream.DistinctUntilChanged(stream.Map(a, func(e emitter.Emission) (string, error) {
			return fmt.Sprint(e.Sequence / 3), nil
		}))))

	pipeline("combineLatest", "Latest of A, B and C whenever any emits",
		Erase(stream.Map(stream.CombineLatest(a, b, c), joinMessages)))

	pipeline("forkJoin", "Last of A, B and C once all complete (stop the sources)",
		Erase(stream.Map(stream.ForkJoin(a, b, c), joinMessages)))

	pipeline("concat",
		fmt.Sprintf("%d of A, then %d of B, then %d of C", t.ConcatCount, t.ConcatCount, t.ConcatCount),
		messagesAny(stream.Concat(
			stream.Take(a, t.ConcatCount),
			stream.Take(b, t.ConcatCount),
			stream.Take(c, t.ConcatCount),
		)))

	inner := func(e emitter.Emission) *stream.Observable[string] {
		ticks := stream.Map(stream.Interval(clock, t.InnerInterval), func(i int) (string, error) {
			return fmt.Sprintf("%s, X: %d", e.Message, i), nil
		})
		return stream.Take(ticks, t.InnerCount)
	}
	pipeline("switchMap", "Each A starts an inner ticker, cancelling the previous one",
		Erase(stream.SwitchMap(a, inner)))
	pipeline("mergeMap", "Each A starts an inner ticker, all run concurrently",
		Erase(stream.MergeMap(a, inner)))
	pipeline("concatMap", "Each A queues an inner ticker, run one at a time",
		Erase(stream.ConcatMap(a, inner)))
	pipeline("exhaustMap", "A starts an inner ticker only when none is running",
		Erase(stream.ExhaustMap(a, inner)))

	pipeline("buffer",
		fmt.Sprintf("A collected until a %v ticker fires", t.BufferInterval),
		Erase(stream.Map(stream.Buffer(a, stream.Interval(clock, t.BufferInterval)), joinMessages)))

	pipeline("bufferTime",
		fmt.Sprintf("A collected in %v windows", t.BufferSpan),
		Erase(stream.Map(stream.BufferTime(clock, a, t.BufferSpan), joinMessages)))

	pipeline("debounce",
		fmt.Sprintf("A after %v of silence, quiet period from a ticker", t.DebounceInterval),
		messagesAny(stream.Debounce(a, func(emitter.Emission) *stream.Observable[int] {
			return stream.Interval(clock, t.DebounceInterval)
		})))

	pipeline("debounceTime",
		fmt.Sprintf("A after %v of silence", t.DebounceDue),
		messagesAny(stream.DebounceTime(clock, a, t.DebounceDue)))

	pipeline("withLatestFrom", "Each A with the latest B and C",
		Erase(stream.Map(stream.WithLatestFrom(a, b, c), joinMessages)))

	pipeline("mapError",
		fmt.Sprintf("A, failing on sequence %d", t.FailSequence),
		messagesAny(stream.Map(a, func(e emitter.Emission) (emitter.Emission, error) {
			if e.Sequence == t.FailSequence {
				return e, fmt.Errorf("%w: %s", ErrRejected, e.Message)
			}
			return e, nil
		})))

	return New(defs...)
}

func messages(o *stream.Observable[emitter.Emission]) *stream.Observable[string] {
	return stream.Map(o, func(e emitter.Emission) (string, error) { return e.Message, nil })
}

func messagesAny(o *stream.Observable[emitter.Emission]) *stream.Observable[any] {
	return Erase(messages(o))
}

func joinMessages(es []emitter.Emission) (string, error) {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Message
	}
	return strings.Join(parts, ", "), nil
}
