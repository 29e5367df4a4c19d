// Command upstream_parity cross-checks the gateway's entity proxy against the
// university API it fronts. For each target it fetches the gateway route and
// the matching upstream route with the same bearer token, unwraps the
// gateway's response envelope, and diffs the payloads. Critical diffs fail
// the run.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type target struct {
	GatewayPath  string `json:"gateway_path"`
	UpstreamPath string `json:"upstream_path"`
	Critical     bool   `json:"critical"`
}

type config struct {
	Targets []target `json:"targets"`
}

type comparison struct {
	Target           target
	GatewayStatus    int
	UpstreamStatus   int
	StatusMatch      bool
	BodyMatch        bool
	Error            error
	DurationGateway  time.Duration
	DurationUpstream time.Duration
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func main() {
	var (
		gatewayBase  string
		upstreamBase string
		token        string
		targetsPath  string
		timeout      time.Duration
	)

	flag.StringVar(&gatewayBase, "gateway-base", "http://localhost:8080/api/v1", "Gateway base URL")
	flag.StringVar(&upstreamBase, "upstream-base", "http://localhost:8000/api", "University API base URL")
	flag.StringVar(&token, "token", os.Getenv("PARITY_TOKEN"), "Bearer token used on both sides")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "upstream_parity", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	if token == "" {
		log.Fatal("a bearer token is required (flag -token or PARITY_TOKEN)")
	}

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatalf("failed to load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var (
		comparisons  []comparison
		breaking     int
		optionalDiff int
	)

	for _, t := range targets {
		comp := compareTarget(client, gatewayBase, upstreamBase, token, t)
		if comp.Error != nil {
			if t.Critical {
				breaking++
			}
		} else {
			if !comp.StatusMatch || !comp.BodyMatch {
				if t.Critical {
					breaking++
				} else {
					optionalDiff++
				}
			}
		}
		comparisons = append(comparisons, comp)
	}

	printReport(comparisons)

	fmt.Printf("Breaking diffs: %d, Optional diffs: %d\n", breaking, optionalDiff)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func compareTarget(client *http.Client, gatewayBase, upstreamBase, token string, tgt target) comparison {
	comp := comparison{Target: tgt}
	gwResp, gwDur, gwErr := performRequest(client, gatewayBase, tgt.GatewayPath, token)
	upResp, upDur, upErr := performRequest(client, upstreamBase, tgt.UpstreamPath, token)
	comp.DurationGateway = gwDur
	comp.DurationUpstream = upDur

	if gwErr != nil {
		comp.Error = fmt.Errorf("gateway request failed: %w", gwErr)
		return comp
	}
	if upErr != nil {
		comp.Error = fmt.Errorf("upstream request failed: %w", upErr)
		return comp
	}

	comp.GatewayStatus = gwResp.StatusCode
	comp.UpstreamStatus = upResp.StatusCode
	comp.StatusMatch = comp.GatewayStatus == comp.UpstreamStatus

	defer gwResp.Body.Close()
	defer upResp.Body.Close()

	gwBody, err := io.ReadAll(gwResp.Body)
	if err != nil {
		comp.Error = fmt.Errorf("read gateway body: %w", err)
		return comp
	}
	upBody, err := io.ReadAll(upResp.Body)
	if err != nil {
		comp.Error = fmt.Errorf("read upstream body: %w", err)
		return comp
	}

	comp.BodyMatch = bodiesEqual(unwrapEnvelope(gwBody), upBody)

	return comp
}

func performRequest(client *http.Client, base, path, token string) (*http.Response, time.Duration, error) {
	if client == nil {
		return nil, 0, errors.New("nil client")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	url := strings.TrimRight(base, "/") + path

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return resp, time.Since(start), nil
}

// unwrapEnvelope strips the gateway's response envelope so the payload lines
// up with the upstream's raw shape. The gateway proxies lists as the items
// array, so upstream item containers are matched against that.
func unwrapEnvelope(body []byte) []byte {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil || env.Data == nil {
		return body
	}
	return env.Data
}

func bodiesEqual(a, b []byte) bool {
	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}

	// Upstream list payloads nest items; the gateway serves the array.
	if m, ok := bj.(map[string]interface{}); ok {
		if items, found := m["items"]; found {
			if _, gatewayIsList := aj.([]interface{}); gatewayIsList {
				bj = items
			}
		}
	}

	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, v2 := range val {
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func printReport(results []comparison) {
	fmt.Println("Upstream Parity Report")
	fmt.Println("======================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s <-> %s\n", status, res.Target.GatewayPath, res.Target.UpstreamPath)
		fmt.Printf("  Gateway Status: %d (%s)\n", res.GatewayStatus, res.DurationGateway)
		fmt.Printf("  Upstream Status: %d (%s)\n", res.UpstreamStatus, res.DurationUpstream)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
		} else {
			fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
		}
	}
}
