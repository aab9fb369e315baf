// Command store_parity replays read requests against two deployments of the
// API, typically one on the postgres driver and one on the mongo driver, and
// reports where their responses differ.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type targetFile struct {
	Targets []target `json:"targets"`
}

type comparison struct {
	Target      target
	LeftStatus  int
	RightStatus int
	StatusMatch bool
	BodyMatch   bool
	Error       error
	LeftTook    time.Duration
	RightTook   time.Duration
}

// Fields that legitimately differ between two stores holding the same data.
var volatileKeys = map[string]struct{}{
	"id":                 {},
	"createdAt":          {},
	"generatedAt":        {},
	"updatedAt":          {},
	"processing_time_ms": {},
	"cache_hit":          {},
}

var defaultTargets = []target{
	{Method: http.MethodGet, Path: "/api/v1/problems", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/programs", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/discipline-logs", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/dashboard", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/dashboard/suggestions"},
}

func main() {
	var (
		leftBase    string
		rightBase   string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&leftBase, "left", "http://localhost:8080", "Base URL of the first deployment")
	flag.StringVar(&rightBase, "right", "http://localhost:8081", "Base URL of the second deployment")
	flag.StringVar(&targetsPath, "targets", "", "Optional JSON targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	targets := defaultTargets
	if targetsPath != "" {
		loaded, err := loadTargets(targetsPath)
		if err != nil {
			log.Fatalf("failed to load targets: %v", err)
		}
		targets = loaded
	}

	client := &http.Client{Timeout: timeout}
	var (
		results      []comparison
		breaking     int
		optionalDiff int
	)
	for _, t := range targets {
		res := compareTarget(client, leftBase, rightBase, t)
		diff := res.Error != nil || !res.StatusMatch || !res.BodyMatch
		switch {
		case diff && t.Critical:
			breaking++
		case diff && res.Error == nil:
			optionalDiff++
		}
		results = append(results, res)
	}

	printReport(results)
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
	var file targetFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return file.Targets, nil
}

func compareTarget(client *http.Client, leftBase, rightBase string, tgt target) comparison {
	res := comparison{Target: tgt}
	leftBody, leftStatus, leftTook, err := fetch(client, leftBase, tgt)
	if err != nil {
		res.Error = fmt.Errorf("left request failed: %w", err)
		return res
	}
	rightBody, rightStatus, rightTook, err := fetch(client, rightBase, tgt)
	if err != nil {
		res.Error = fmt.Errorf("right request failed: %w", err)
		return res
	}

	res.LeftStatus, res.RightStatus = leftStatus, rightStatus
	res.LeftTook, res.RightTook = leftTook, rightTook
	res.StatusMatch = leftStatus == rightStatus
	res.BodyMatch = bodiesEqual(leftBody, rightBody)
	return res
}

func fetch(client *http.Client, base string, tgt target) ([]byte, int, time.Duration, error) {
	if client == nil {
		return nil, 0, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, time.Since(start), nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}
	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	return reflect.DeepEqual(normalize(aj), normalize(bj))
}

// normalize drops volatile keys so only stored content is compared.
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			if _, skip := volatileKeys[k]; skip {
				continue
			}
			out[k] = normalize(inner)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = normalize(inner)
		}
		return out
	default:
		return val
	}
}

func printReport(results []comparison) {
	fmt.Println("Store Parity Report")
	fmt.Println("===================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Left: %d (%s) | Right: %d (%s)\n", res.LeftStatus, res.LeftTook, res.RightStatus, res.RightTook)
		fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
	}
}
