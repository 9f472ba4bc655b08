package profile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func diffLoad(d *Differ, profiles, sessions Records) ChangeEvent {
	g := BuildGraph(profiles, sessions)
	return d.Diff(g, Validate(g))
}

func TestDiffFirstLoadIsAllAdded(t *testing.T) {
	d := NewDiffer()
	event := diffLoad(d, Records{
		"src":  {KeyAccessKeyID: "K", KeySecretAccessKey: "S"},
		"role": {KeyRoleArn: "arn1", KeySourceProfile: "src"},
	}, Records{
		"corp": {KeySsoStartURL: "https://corp.awsapps.com/start", KeySsoRegion: "us-east-1"},
	})

	if diff := cmp.Diff([]string{"role", "src"}, event.ProfilesAdded); diff != "" {
		t.Errorf("ProfilesAdded mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"corp"}, event.SsoSessionsAdded); diff != "" {
		t.Errorf("SsoSessionsAdded mismatch (-want +got):\n%s", diff)
	}
	if len(event.ProfilesModified) != 0 || len(event.ProfilesRemoved) != 0 {
		t.Errorf("unexpected modified/removed on first load: %+v", event)
	}
}

func TestDiffIdenticalLoadsAreEmpty(t *testing.T) {
	profiles := Records{
		"src":  {KeyAccessKeyID: "K", KeySecretAccessKey: "S"},
		"role": {KeyRoleArn: "arn1", KeySourceProfile: "src"},
	}

	d := NewDiffer()
	diffLoad(d, profiles, nil)
	event := diffLoad(d, profiles, nil)

	if !event.Empty() {
		t.Errorf("expected empty event for identical loads, got %+v", event)
	}
}

func TestDiffDirectModification(t *testing.T) {
	d := NewDiffer()
	diffLoad(d, Records{
		"src": {KeyAccessKeyID: "K", KeySecretAccessKey: "S"},
	}, nil)

	event := diffLoad(d, Records{
		"src": {KeyAccessKeyID: "K2", KeySecretAccessKey: "S"},
	}, nil)

	if diff := cmp.Diff([]string{"src"}, event.ProfilesModified); diff != "" {
		t.Errorf("ProfilesModified mismatch (-want +got):\n%s", diff)
	}
	if len(event.ProfilesAdded) != 0 || len(event.ProfilesRemoved) != 0 {
		t.Errorf("unexpected added/removed: %+v", event)
	}
}

func TestDiffPropagatesThroughChain(t *testing.T) {
	base := func(key string) Records {
		return Records{
			"src":       {KeyAccessKeyID: key, KeySecretAccessKey: "S"},
			"role":      {KeyRoleArn: "arn1", KeySourceProfile: "src"},
			"role2":     {KeyRoleArn: "arn2", KeySourceProfile: "role"},
			"unrelated": {KeyAccessKeyID: "other", KeySecretAccessKey: "S"},
		}
	}

	d := NewDiffer()
	diffLoad(d, base("K"), nil)

	// Only src's own properties change; role and role2 change transitively
	event := diffLoad(d, base("K2"), nil)

	want := []string{"role", "role2", "src"}
	if diff := cmp.Diff(want, event.ProfilesModified); diff != "" {
		t.Errorf("ProfilesModified mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffSsoSessionChangePropagates(t *testing.T) {
	profiles := Records{
		"a":         {KeySsoSession: "corp", KeySsoAccountID: "1", KeySsoRoleName: "R"},
		"unrelated": {KeyAccessKeyID: "K", KeySecretAccessKey: "S"},
	}
	sessions := func(url string) Records {
		return Records{
			"corp": {KeySsoStartURL: url, KeySsoRegion: "us-east-1"},
		}
	}

	d := NewDiffer()
	diffLoad(d, profiles, sessions("https://old.awsapps.com/start"))
	event := diffLoad(d, profiles, sessions("https://new.awsapps.com/start"))

	if diff := cmp.Diff([]string{"corp"}, event.SsoSessionsModified); diff != "" {
		t.Errorf("SsoSessionsModified mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a"}, event.ProfilesModified); diff != "" {
		t.Errorf("ProfilesModified mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffRemovedSourceProfile(t *testing.T) {
	d := NewDiffer()
	diffLoad(d, Records{
		"src":  {KeyAccessKeyID: "K", KeySecretAccessKey: "S"},
		"role": {KeyRoleArn: "arn1", KeySourceProfile: "src"},
	}, nil)

	// Second load drops src; role still references it and turns invalid
	g := BuildGraph(Records{
		"role": {KeyRoleArn: "arn1", KeySourceProfile: "src"},
	}, nil)
	res := Validate(g)

	if err := res.InvalidProfiles["role"]; err == nil || err.Code != ErrCodeSourceProfileNotFound {
		t.Fatalf("expected source_profile_not_found for 'role', got %v", res.InvalidProfiles["role"])
	}

	event := d.Diff(g, res)
	// Both left the valid set: src disappeared, role turned invalid
	if diff := cmp.Diff([]string{"role", "src"}, event.ProfilesRemoved); diff != "" {
		t.Errorf("ProfilesRemoved mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffIsIdempotent(t *testing.T) {
	profiles := Records{
		"src": {KeyAccessKeyID: "K", KeySecretAccessKey: "S"},
	}

	d := NewDiffer()
	diffLoad(d, profiles, nil)

	changed := Records{
		"src": {KeyAccessKeyID: "K2", KeySecretAccessKey: "S"},
	}
	first := diffLoad(d, changed, nil)
	second := diffLoad(d, changed, nil)

	if first.Empty() {
		t.Error("first diff after a change should not be empty")
	}
	if !second.Empty() {
		t.Errorf("second diff of the same load should be empty, got %+v", second)
	}
}
