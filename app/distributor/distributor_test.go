package distributor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mudikgratis2025/detik-syndicator/app/destinations"
	"github.com/mudikgratis2025/detik-syndicator/app/publisher"
)

type fakeRegistry struct {
	pages []destinations.Destination
	err   error
	loads int
}

func (r *fakeRegistry) Load() ([]destinations.Destination, error) {
	r.loads++
	return r.pages, r.err
}

type fakePublisher struct {
	invalidTokens map[string]bool
	uploadErrs    map[string]error
	reelCalls     int
	videoCalls    int
}

func (p *fakePublisher) ValidateToken(_ context.Context, dest destinations.Destination) bool {
	return !p.invalidTokens[dest.ID]
}

func (p *fakePublisher) UploadVideo(_ context.Context, dest destinations.Destination, _, _ string) (string, error) {
	p.videoCalls++
	if err := p.uploadErrs[dest.ID]; err != nil {
		return "", err
	}
	return "post-" + dest.ID, nil
}

func (p *fakePublisher) UploadReel(_ context.Context, dest destinations.Destination, _, _ string) (string, error) {
	p.reelCalls++
	if err := p.uploadErrs[dest.ID]; err != nil {
		return "", err
	}
	return "reel-" + dest.ID, nil
}

func threePages() []destinations.Destination {
	return []destinations.Destination{
		{ID: "1", AccessToken: "t1", Name: "One"},
		{ID: "2", AccessToken: "t2", Name: "Two"},
		{ID: "3", AccessToken: "t3", Name: "Three"},
	}
}

func noDelay(context.Context, time.Duration) {}

func TestDistributor_PartialFailureFanOut(t *testing.T) {
	reg := &fakeRegistry{pages: threePages()}
	pub := &fakePublisher{
		uploadErrs: map[string]error{
			"2": &publisher.PublishError{StatusCode: 403, Body: "denied"},
		},
	}

	d := NewDistributor(reg, pub, time.Second, noDelay)

	outcomes, err := d.Run(context.Background(), "/tmp/v.mp4", "caption", false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(outcomes) != 3 {
		t.Fatalf("Expected 3 outcomes, got %d", len(outcomes))
	}
	wantStatuses := []Status{StatusSuccess, StatusFailed, StatusSuccess}
	for i, want := range wantStatuses {
		if outcomes[i].Status != want {
			t.Errorf("Outcome %d: expected %s, got %s", i, want, outcomes[i].Status)
		}
	}
	if outcomes[0].PostID != "post-1" || outcomes[0].PostURL != "https://facebook.com/post-1" {
		t.Errorf("Success outcome missing post details: %+v", outcomes[0])
	}
	if outcomes[1].Reason == "" {
		t.Error("Failed outcome must carry a reason")
	}
	if pub.videoCalls != 3 {
		t.Errorf("Expected 3 upload attempts, got %d", pub.videoCalls)
	}
}

func TestDistributor_InvalidTokenSkipsUpload(t *testing.T) {
	reg := &fakeRegistry{pages: threePages()}
	pub := &fakePublisher{invalidTokens: map[string]bool{"2": true}}

	var delays int
	d := NewDistributor(reg, pub, time.Second, func(context.Context, time.Duration) { delays++ })

	outcomes, err := d.Run(context.Background(), "/tmp/v.mp4", "caption", false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if outcomes[1].Status != StatusFailed || outcomes[1].Reason != "invalid access token" {
		t.Errorf("Expected preflight failure outcome, got %+v", outcomes[1])
	}
	if pub.videoCalls != 2 {
		t.Errorf("Invalid token destination must not get an upload attempt, got %d calls", pub.videoCalls)
	}
	// Delay after destination 1 only: none charged for the preflight failure,
	// none after the last destination.
	if delays != 1 {
		t.Errorf("Expected 1 delay, got %d", delays)
	}
}

func TestDistributor_NoDelayAfterLast(t *testing.T) {
	reg := &fakeRegistry{pages: threePages()}
	pub := &fakePublisher{}

	var delays int
	d := NewDistributor(reg, pub, time.Second, func(context.Context, time.Duration) { delays++ })

	if _, err := d.Run(context.Background(), "/tmp/v.mp4", "caption", false); err != nil {
		t.Fatal(err)
	}
	if delays != 2 {
		t.Errorf("Expected 2 delays for 3 destinations, got %d", delays)
	}
}

func TestDistributor_ReelSelection(t *testing.T) {
	reg := &fakeRegistry{pages: threePages()[:1]}
	pub := &fakePublisher{}

	d := NewDistributor(reg, pub, 0, noDelay)

	if _, err := d.Run(context.Background(), "/tmp/v.mp4", "caption", true); err != nil {
		t.Fatal(err)
	}
	if pub.reelCalls != 1 || pub.videoCalls != 0 {
		t.Errorf("Expected reel protocol, got reel=%d video=%d", pub.reelCalls, pub.videoCalls)
	}
}

func TestDistributor_ErrorStatusForUnexpectedFault(t *testing.T) {
	reg := &fakeRegistry{pages: threePages()[:1]}
	pub := &fakePublisher{uploadErrs: map[string]error{"1": errors.New("connection reset")}}

	d := NewDistributor(reg, pub, 0, noDelay)

	outcomes, err := d.Run(context.Background(), "/tmp/v.mp4", "caption", false)
	if err != nil {
		t.Fatal(err)
	}
	if outcomes[0].Status != StatusError {
		t.Errorf("Unexpected fault should be status error, got %s", outcomes[0].Status)
	}
}

func TestDistributor_TypedPhaseErrorsAreFailed(t *testing.T) {
	cases := []error{
		&publisher.SessionError{Reason: "no session"},
		&publisher.UploadError{StatusCode: 400, Body: "rejected"},
		&publisher.PublishError{StatusCode: 403, Body: "refused"},
	}

	for _, phaseErr := range cases {
		reg := &fakeRegistry{pages: threePages()[:1]}
		pub := &fakePublisher{uploadErrs: map[string]error{"1": phaseErr}}

		d := NewDistributor(reg, pub, 0, noDelay)
		outcomes, err := d.Run(context.Background(), "/tmp/v.mp4", "caption", true)
		if err != nil {
			t.Fatal(err)
		}
		if outcomes[0].Status != StatusFailed {
			t.Errorf("%T should map to failed, got %s", phaseErr, outcomes[0].Status)
		}
	}
}

func TestDistributor_ReloadsRegistryPerRun(t *testing.T) {
	reg := &fakeRegistry{pages: threePages()}
	pub := &fakePublisher{}

	d := NewDistributor(reg, pub, 0, noDelay)

	for i := 0; i < 3; i++ {
		if _, err := d.Run(context.Background(), "/tmp/v.mp4", "caption", false); err != nil {
			t.Fatal(err)
		}
	}
	if reg.loads != 3 {
		t.Errorf("Expected registry reload per run, got %d loads", reg.loads)
	}
}

func TestDistributor_RegistryLoadFailure(t *testing.T) {
	reg := &fakeRegistry{err: fmt.Errorf("config missing")}
	d := NewDistributor(reg, &fakePublisher{}, 0, noDelay)

	if _, err := d.Run(context.Background(), "/tmp/v.mp4", "caption", false); err == nil {
		t.Fatal("Expected error when destinations cannot be loaded")
	}
}
