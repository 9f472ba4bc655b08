package profile

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegistryNotifiesListenersOncePerLoad(t *testing.T) {
	var events []ChangeEvent
	registry := NewRegistry(WithListener(func(e ChangeEvent) {
		events = append(events, e)
	}))

	registry.Load(Records{
		"src": {KeyAccessKeyID: "K", KeySecretAccessKey: "S"},
	}, nil)
	registry.Load(Records{
		"src": {KeyAccessKeyID: "K2", KeySecretAccessKey: "S"},
	}, nil)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if diff := cmp.Diff([]string{"src"}, events[0].ProfilesAdded); diff != "" {
		t.Errorf("first event (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"src"}, events[1].ProfilesModified); diff != "" {
		t.Errorf("second event (-want +got):\n%s", diff)
	}
}

func TestRegistryListenerCanReadBack(t *testing.T) {
	// Listeners run outside the state lock, so reading the registry from
	// inside one must not deadlock (the provider resolver does exactly this).
	registry := NewRegistry()
	registry.Subscribe(func(ChangeEvent) {
		if registry.Graph() == nil {
			t.Error("listener should observe the new graph")
		}
	})

	registry.Load(Records{
		"src": {KeyAccessKeyID: "K", KeySecretAccessKey: "S"},
	}, nil)
}

func TestRegistryExposesLastResult(t *testing.T) {
	registry := NewRegistry()
	registry.Load(Records{
		"good": {KeyAccessKeyID: "K", KeySecretAccessKey: "S"},
		"bad":  {KeyRoleArn: "arn", KeySourceProfile: "ghost"},
	}, nil)

	res := registry.Result()
	if _, ok := res.ValidProfiles["good"]; !ok {
		t.Error("expected 'good' in the retained result")
	}
	if _, ok := res.InvalidProfiles["bad"]; !ok {
		t.Error("expected 'bad' in the retained result")
	}
}

func TestRegistryConcurrentLoads(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.Load(Records{
				"src": {KeyAccessKeyID: "K", KeySecretAccessKey: "S"},
			}, nil)
		}()
	}
	wg.Wait()

	// Whatever the interleaving, the retained state is one consistent load
	if got := len(registry.Result().ValidProfiles); got != 1 {
		t.Errorf("expected 1 valid profile after concurrent loads, got %d", got)
	}
}
