package process_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/importkit/pkg/importkit/core"
	"github.com/arthur-debert/importkit/pkg/importkit/process"
)

type panickingObserver struct{}

func (panickingObserver) BeforeImportStart(core.ImportProcess) { panic("observer bug") }
func (panickingObserver) AfterImportFinish(core.ImportProcess) {}

func TestObserverSet_SubscribeAndUnsubscribe(t *testing.T) {
	ev := &events{}
	set := process.NewObserverSet[int, string](nil)

	first := set.SubscribeProcess(eventObserver{ev: ev})
	second := set.SubscribeImporter(eventObserver{ev: ev})
	require.NotEqual(t, first, second)
	assert.Equal(t, 2, set.Len())

	set.BeforeImportStart(bareProcess{})
	set.AfterModelImported(&mockImporter{})
	set.AfterImportFinish(bareProcess{})
	assert.Equal(t, []string{"before", "model", "after"}, ev.list)

	set.Unsubscribe(first)
	set.Unsubscribe(second)
	set.Unsubscribe("sub_unknown")
	assert.Equal(t, 0, set.Len())

	set.BeforeImportStart(bareProcess{})
	assert.Len(t, ev.list, 3)
}

func TestObserverSet_NotifiesInSubscriptionOrder(t *testing.T) {
	var order []string
	set := process.NewObserverSet[int, string](nil)
	for _, name := range []string{"a", "b", "c"} {
		name := name
		set.SubscribeProcess(funcObserver{before: func() { order = append(order, name) }})
	}

	set.BeforeImportStart(bareProcess{})
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestObserverSet_RecoversPanics(t *testing.T) {
	ev := &events{}
	set := process.NewObserverSet[int, string](core.NewLeveled(recordingLogger{ev: ev}))

	set.SubscribeProcess(panickingObserver{})
	set.SubscribeProcess(eventObserver{ev: ev})

	assert.NotPanics(t, func() { set.BeforeImportStart(bareProcess{}) })

	require.Len(t, ev.list, 2)
	assert.True(t, strings.HasPrefix(ev.list[0], "warning: observer sub_1 failed on before_import_start: observer bug"))
	assert.Equal(t, "before", ev.list[1])
}

type funcObserver struct {
	before func()
}

func (f funcObserver) BeforeImportStart(core.ImportProcess) { f.before() }
func (f funcObserver) AfterImportFinish(core.ImportProcess) {}
