package mqtt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeClient_DeliverInvokesSubscribers(t *testing.T) {
	f := NewFakeClient()

	var got []string
	require.NoError(t, f.Subscribe("a/b", func(topic, payload string) {
		got = append(got, topic+"="+payload)
	}))

	f.Deliver("a/b", "1")
	f.Deliver("a/other", "2") // no subscriber, dropped

	assert.Equal(t, []string{"a/b=1"}, got)
}

func TestFakeClient_RecordsPublishes(t *testing.T) {
	f := NewFakeClient()

	require.NoError(t, f.Publish("out/x", "10", true))
	require.NoError(t, f.Publish("out/y", "20", false))
	require.NoError(t, f.Publish("out/x", "30", true))

	assert.Equal(t, []string{"10", "30"}, f.PayloadsFor("out/x"))
	assert.Equal(t, []string{"20"}, f.PayloadsFor("out/y"))
	assert.True(t, f.Published[0].Retained)
}

func TestFakeClient_PublishError(t *testing.T) {
	f := NewFakeClient()
	f.PublishError = errors.New("broker gone")

	assert.Error(t, f.Publish("out/x", "10", false))
	assert.Empty(t, f.Published)
}

func TestFakeClient_Close(t *testing.T) {
	f := NewFakeClient()
	f.Close()
	assert.True(t, f.Closed)
}
