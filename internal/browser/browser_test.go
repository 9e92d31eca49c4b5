package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"centerhub/internal/center"
)

type recordingOpener struct {
	urls []string
	err  error
}

func (o *recordingOpener) Open(_ context.Context, url string) error {
	o.urls = append(o.urls, url)
	return o.err
}

func sample() center.Record {
	return center.Record{
		CenterName:      "Kasba Pilot School",
		Phone:           "01711000000",
		MagistratePhone: center.NotAvailable,
		MapsURL:         "https://www.google.com/maps/search/?api=1&query=23.7,91.1",
	}
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" Map ")
	require.NoError(t, err)
	assert.Equal(t, ActionMap, a)

	_, err = ParseAction("email")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	r := sample()

	link, ok := Resolve(r, ActionCall)
	assert.True(t, ok)
	assert.Equal(t, "tel:01711000000", link)

	link, ok = Resolve(r, ActionMap)
	assert.True(t, ok)
	assert.Equal(t, r.MapsURL, link)

	_, ok = Resolve(r, ActionMagistrate)
	assert.False(t, ok)

	r.Phone = center.NoData
	_, ok = Resolve(r, ActionCall)
	assert.False(t, ok)

	_, ok = Resolve(r, Action("fax"))
	assert.False(t, ok)
}

func TestPerform(t *testing.T) {
	o := &recordingOpener{}

	opened, err := Perform(context.Background(), o, sample(), ActionCall, nil)
	require.NoError(t, err)
	assert.True(t, opened)

	opened, err = Perform(context.Background(), o, sample(), ActionMagistrate, nil)
	require.NoError(t, err)
	assert.False(t, opened)

	assert.Equal(t, []string{"tel:01711000000"}, o.urls)

	o.err = errors.New("no chrome")
	_, err = Perform(context.Background(), o, sample(), ActionMap, nil)
	assert.ErrorContains(t, err, "no chrome")
}

func TestLauncherRejectsWithoutStarting(t *testing.T) {
	l := NewLauncher(nil, WithHeadless(true))
	defer l.Close()

	assert.Error(t, l.Open(context.Background(), ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, l.Open(ctx, "https://example.com"), context.Canceled)
	assert.Nil(t, l.browserCtx)

	l.Close()
}
