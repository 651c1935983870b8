package activity_test

import (
	"testing"

	"github.com/hkominsky/bullseye-client/activity"
	"github.com/hkominsky/bullseye-client/activity/sourcefake"
	"github.com/stretchr/testify/require"
)

func TestMonitor_StartSubscribesEveryKind(t *testing.T) {
	source := sourcefake.New()
	signals := 0
	monitor := activity.NewMonitor(source, func() { signals++ })

	monitor.Start()
	for _, kind := range activity.Kinds() {
		require.Equal(t, 1, source.SubscriberCount(kind))
	}

	source.Fire(activity.KindKeyDown)
	source.Fire(activity.KindScroll)
	require.Equal(t, 2, signals)
}

func TestMonitor_StartTwiceDoesNotDuplicate(t *testing.T) {
	source := sourcefake.New()
	monitor := activity.NewMonitor(source, func() {})

	monitor.Start()
	monitor.Start()
	require.Equal(t, 1, source.SubscriberCount(activity.KindPointerDown))
}

func TestMonitor_CloseRemovesAllSubscriptions(t *testing.T) {
	source := sourcefake.New()
	signals := 0
	monitor := activity.NewMonitor(source, func() { signals++ })

	monitor.Start()
	monitor.Close()
	for _, kind := range activity.Kinds() {
		require.Equal(t, 0, source.SubscriberCount(kind))
	}

	source.Fire(activity.KindPointerMove)
	require.Equal(t, 0, signals)

	// Close again is a no-op.
	monitor.Close()
}
