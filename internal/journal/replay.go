package journal

import (
	"github.com/DoyleJ11/busfahrer-client/internal/view"
	"github.com/DoyleJ11/busfahrer-client/pkg/types"
)

type Reducer[S any] func(S, types.PushMessage) (S, []view.Effect)

// Replay folds msgs into init the way a mounted screen does: in order, and
// nothing after the first navigation.
func Replay[S any](init S, reduce Reducer[S], msgs []types.PushMessage) S {
	st := init
	for _, m := range msgs {
		var eff []view.Effect
		st, eff = reduce(st, m)
		for _, e := range eff {
			if _, ok := e.(view.Navigate); ok {
				return st
			}
		}
	}
	return st
}
