//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"os/exec"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/liftdispatch/core/dispatch"
	"github.com/kilianp07/liftdispatch/internal/testutil"
)

func TestBridgeWithMosquitto(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, cleanup, err := testutil.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto unavailable: %v", err)
	}
	defer cleanup()

	cfg := Config{Broker: broker, ClientID: "liftd-test", QoS: map[string]byte{"events": 1, "queue": 1}}
	cli, err := NewClient(cfg)
	require.NoError(t, err)
	defer cli.Disconnect()

	fleet := NewFleet([]int{8, 8})
	bridge := NewBridge(cfg, cli, fleet)
	eng, err := dispatch.NewEngine(dispatch.Config{}, 10, []dispatch.CarSpec{{Host: fleet.Car(0)}, {Host: fleet.Car(1)}}, nil)
	require.NoError(t, err)
	bridge.SetNotifier(eng)
	require.NoError(t, bridge.Start(ctx, cli))

	got := make(chan QueueCommand, 4)
	host := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("host-sim"))
	tok := host.Connect()
	tok.Wait()
	require.NoError(t, tok.Error())
	defer host.Disconnect(100)
	tok = host.Subscribe("lift/car/+/queue", 1, func(_ paho.Client, m paho.Message) {
		var cmd QueueCommand
		if json.Unmarshal(m.Payload(), &cmd) == nil {
			got <- cmd
		}
	})
	tok.Wait()
	require.NoError(t, tok.Error())

	tok = host.Publish("lift/floor/6/button", 1, false, []byte(`{"direction":"down"}`))
	tok.Wait()
	require.NoError(t, tok.Error())

	select {
	case cmd := <-got:
		assert.Equal(t, []int{6}, cmd.Queue)
	case <-time.After(5 * time.Second):
		t.Fatal("no queue published")
	}
}
