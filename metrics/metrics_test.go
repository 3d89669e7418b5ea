package metrics

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/lunfardo314/fairwheel/global"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func freePort(t *testing.T) int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestStart(t *testing.T) {
	port := freePort(t)
	viper.Set(global.ConfigKeyMetricsPort, port)
	defer viper.Set(global.ConfigKeyMetricsPort, 0)

	env := global.New("test", zapcore.InfoLevel, []string{"stderr"})
	w := NewWheel(env.MetricsRegistry())
	w.ObserveSpin("Gold")
	Start(env)

	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/metrics", port))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 3*time.Second, 50*time.Millisecond)
	require.Contains(t, string(body), `fairwheel_spins_total{prize="Gold"} 1`)

	env.Stop()
	env.Wait()
}
