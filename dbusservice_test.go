package main

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePropertyStore struct {
	values map[string]interface{}
	sets   []string
}

func newFakePropertyStore() *fakePropertyStore {
	return &fakePropertyStore{values: map[string]interface{}{
		"IsIdleInhibited": false,
		"ManualInhibit":   false,
	}}
}

func (f *fakePropertyStore) GetMust(iface, property string) interface{} {
	return f.values[property]
}

func (f *fakePropertyStore) SetMust(iface, property string, v interface{}) {
	f.values[property] = v
	f.sets = append(f.sets, property)
}

func TestControlService_PublishEmitsOnlyOnChange(t *testing.T) {
	store := newFakePropertyStore()
	svc := &ControlService{props: store}

	svc.Publish(false, true)
	assert.Equal(t, []string{"IsIdleInhibited"}, store.sets)
	assert.Equal(t, true, store.values["IsIdleInhibited"])

	// Re-publishing the same state must not signal again.
	svc.Publish(false, true)
	assert.Equal(t, []string{"IsIdleInhibited"}, store.sets)

	svc.Publish(true, true)
	assert.Equal(t, []string{"IsIdleInhibited", "ManualInhibit"}, store.sets)
}

func TestControlService_ToggleQueuedWhileLoopBusy(t *testing.T) {
	requests := make(chan ControlRequest, 16)
	svc := &ControlService{request: func(r ControlRequest) { requests <- r }}

	// No receiver is parked on the channel, as when the main loop is mid
	// event. The calls must still be queued, in order.
	require.Nil(t, svc.ToggleManualInhibit())
	require.Nil(t, svc.ToggleManualInhibit())

	assert.Equal(t, ManualToggle, <-requests)
	assert.Equal(t, ManualToggle, <-requests)
}

func TestControlService_ManualWriteForwards(t *testing.T) {
	requests := make(chan ControlRequest, 16)
	svc := &ControlService{request: func(r ControlRequest) { requests <- r }}

	require.Nil(t, svc.onManualWrite(&prop.Change{Value: true}))
	require.Nil(t, svc.onManualWrite(&prop.Change{Value: false}))

	assert.Equal(t, ManualOn, <-requests)
	assert.Equal(t, ManualOff, <-requests)
}

func TestControlService_ManualWriteRejectsNonBoolean(t *testing.T) {
	svc := &ControlService{request: func(ControlRequest) {
		t.Fatal("a rejected write must not reach the main loop")
	}}

	assert.NotNil(t, svc.onManualWrite(&prop.Change{Value: "yes"}))
}

func TestControlService_InhibitedFlipsAfterDebounce(t *testing.T) {
	store := newFakePropertyStore()
	svc := &ControlService{props: store}
	state := NewInhibitState(10 * time.Millisecond)

	state.SetPlaying(true)
	svc.Publish(state.Manual(), state.Combined())
	assert.Equal(t, false, store.values["IsIdleInhibited"])

	select {
	case ev := <-state.TimerC():
		tr := state.TimerFired(ev)
		require.True(t, tr.Changed)
	case <-time.After(time.Second):
		t.Fatal("debounce timer never fired")
	}

	svc.Publish(state.Manual(), state.Combined())
	assert.Equal(t, true, store.values["IsIdleInhibited"])
	assert.Contains(t, store.sets, "IsIdleInhibited")
}
