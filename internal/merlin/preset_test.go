package merlin

import (
	"context"
	"testing"
	"time"

	"github.com/danmuck/merlinctl/internal/protocol"
	"github.com/danmuck/merlinctl/internal/protocol/frame"
	"github.com/danmuck/merlinctl/internal/protocol/session"
	"github.com/danmuck/merlinctl/internal/testutil/fakedevice"
	"github.com/danmuck/merlinctl/internal/testutil/testlog"
	"github.com/danmuck/merlinctl/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFourDSTEMPreset(t *testing.T) {
	testlog.Start(t)
	dev := fakedevice.New().With("TRIGGERSTART", "0")
	c := connect(t, dev)

	require.NoError(t, c.Apply(FourDSTEM(65536, 12)))
	want := map[string]string{
		"TRIGGERSTART":        "1",
		"TRIGGERSTOP":         "1",
		"CONTINUOUSRW":        "1",
		"NUMFRAMESTOACQUIRE":  "65536",
		"NUMFRAMESPERTRIGGER": "65536",
		"COUNTERDEPTH":        "12",
	}
	for field, value := range want {
		assert.Equal(t, value, fieldOf(t, dev, field), field)
	}
}

func TestPresetValidatesBeforeSending(t *testing.T) {
	testlog.Start(t)
	dev := fakedevice.New()
	c := connect(t, dev)

	err := c.Apply(FourDSTEM(64, 8))
	require.ErrorIs(t, err, validate.ErrValidation)
	assert.Empty(t, dev.Requests())

	err = c.Apply(Preset{Name: "bad", Steps: []Step{{VarTemp, 20.0}}})
	require.ErrorIs(t, err, ErrReadOnly)
	err = c.Apply(Preset{Name: "bad", Exec: Command(99)})
	require.ErrorIs(t, err, ErrUnknownCommand)
	assert.Empty(t, dev.Requests())
}

func TestPresetStopsAtFirstFailure(t *testing.T) {
	testlog.Start(t)
	dev := fakedevice.New().With("TRIGGERSTART", "0").Fail(protocol.VerbSet, "CONTINUOUSRW", protocol.StatusBusy)
	c := connect(t, dev)

	require.ErrorIs(t, c.Apply(FourDSTEM(256, 6)), protocol.ErrBusy)
	assert.Equal(t, "1", fieldOf(t, dev, "TRIGGERSTOP"))
	_, ok := dev.Field("NUMFRAMESTOACQUIRE")
	assert.False(t, ok)
}

func TestPresetRunsClosingCommand(t *testing.T) {
	testlog.Start(t)
	dev := fakedevice.New()
	c := connect(t, dev)

	require.NoError(t, c.Apply(DACScan(3, 10, 0, 511, 4)))
	reqs := dev.Requests()
	require.NotEmpty(t, reqs)
	assert.Equal(t, frame.Command("DACSCAN"), reqs[len(reqs)-1])
	assert.Equal(t, "511", fieldOf(t, dev, "DACSCANSTOP"))

	dev.Reset()
	require.NoError(t, c.Apply(ImageAcquisition(1, 100)))
	assert.Equal(t, frame.Command("STARTACQUISITION"), dev.Requests()[2])
}

func quickPoll() session.BackoffConfig {
	return session.BackoffConfig{InitialDelay: time.Millisecond, Multiplier: 1.5, MaxDelay: 5 * time.Millisecond}
}

func TestWaitForStatusPollsUntilWanted(t *testing.T) {
	testlog.Start(t)
	dev := fakedevice.New().With("DETECTORSTATUS", "1")
	dev.OnCommand("STOPACQUISITION", func(d *fakedevice.Device) { d.Put("DETECTORSTATUS", "0") })
	c := connect(t, dev)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := WaitForStatus(ctx, c, StatusBusy, quickPoll())
	require.NoError(t, err)

	require.NoError(t, c.Exec(CmdStop))
	require.NoError(t, WaitForStatus(ctx, c, StatusIdle, quickPoll()))
}

func TestWaitForStatusHonoursContext(t *testing.T) {
	testlog.Start(t)
	dev := fakedevice.New().With("DETECTORSTATUS", "4")
	c := connect(t, dev)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := WaitForStatus(ctx, c, StatusIdle, quickPoll())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, len(dev.Requests()), 1)
}

func TestWaitForStatusStopsOnExchangeFailure(t *testing.T) {
	testlog.Start(t)
	dev := fakedevice.New().Fail(protocol.VerbGet, "DETECTORSTATUS", protocol.StatusBusy)
	c := connect(t, dev)

	err := WaitForStatus(context.Background(), c, StatusIdle, quickPoll())
	require.ErrorIs(t, err, protocol.ErrBusy)
	assert.Len(t, dev.Requests(), 1)
}
