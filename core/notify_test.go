package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifier(t *testing.T) {
	var n Notifier
	var calls []string

	unsubA := n.Subscribe(func() { calls = append(calls, "a") })
	n.Subscribe(func() { calls = append(calls, "b") })
	n.Emit()
	assert.Equal(t, []string{"a", "b"}, calls)

	unsubA()
	unsubA()
	n.Emit()
	assert.Equal(t, []string{"a", "b", "b"}, calls)
}

func TestNotifierReentrantSubscribe(t *testing.T) {
	var n Notifier
	count := 0
	n.Subscribe(func() {
		count++
		if count == 1 {
			n.Subscribe(func() { count += 10 })
		}
	})
	n.Emit()
	assert.Equal(t, 1, count)
	n.Emit()
	assert.Equal(t, 12, count)
}
