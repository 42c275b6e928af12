package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/showwin/speedtest-go/speedtest"
)

// throughputFormat renders the measured line speed. The rendering is
// part of the record format; stores written by older versions of the
// tool carry the same shape.
const throughputFormat = "download: %.2f Mb/s, upload: %.2f Mb/s"

// Throughput measures download and upload bandwidth against a public
// speedtest server and renders both in Mb/s. The measurement runs under
// the configured speedtest timeout; overrunning it surfaces the
// context's deadline error so the caller can classify the failure as a
// timeout rather than a missing value.
func (p *systemProber) Throughput(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.SpeedtestTimeout)
	defer cancel()

	download, upload, err := p.speedtest(ctx, p.cfg.SpeedtestServers)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("speedtest aborted: %w", ctxErr)
		}
		return "", err
	}

	return fmt.Sprintf(throughputFormat, download, upload), nil
}

// runSpeedtest is the production speedtest seam. An empty serverIDs
// slice lets the library pick the nearest server.
func (p *systemProber) runSpeedtest(ctx context.Context, serverIDs []int) (float64, float64, error) {
	client := speedtest.New()

	servers, err := client.FetchServers()
	if err != nil {
		return 0, 0, fmt.Errorf("fetching speedtest servers: %w", err)
	}

	targets, err := servers.FindServer(serverIDs)
	if err != nil {
		return 0, 0, fmt.Errorf("selecting speedtest server: %w", err)
	}
	if len(targets) == 0 {
		return 0, 0, errors.New("no speedtest server available")
	}

	server := targets[0]
	defer server.Context.Reset()

	p.log.Debug().
		Str("server", server.Name).
		Str("sponsor", server.Sponsor).
		Msg("Running speedtest")

	if err := server.PingTestContext(ctx, nil); err != nil {
		return 0, 0, fmt.Errorf("speedtest ping: %w", err)
	}
	if err := server.DownloadTestContext(ctx); err != nil {
		return 0, 0, fmt.Errorf("speedtest download: %w", err)
	}
	if err := server.UploadTestContext(ctx); err != nil {
		return 0, 0, fmt.Errorf("speedtest upload: %w", err)
	}

	p.log.Debug().
		Dur("latency", server.Latency).
		Float64("download_mbps", server.DLSpeed.Mbps()).
		Float64("upload_mbps", server.ULSpeed.Mbps()).
		Msg("Speedtest finished")

	return server.DLSpeed.Mbps(), server.ULSpeed.Mbps(), nil
}
