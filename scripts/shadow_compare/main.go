// Command shadow_compare replays read-only planner endpoints against two
// deployments and reports response differences. Used when rolling out
// placement-engine changes: run the same seeded database behind both, run a
// schedule on each, then diff the listings.
package main

import (
	"bytes"
	"encoding/json"
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

// defaultTargets covers the deterministic read surface of the planner.
var defaultTargets = []target{
	{Method: http.MethodGet, Path: "/health", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/schedule?examType=final", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/schedule?examType=midterm", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/exams?examType=final", Critical: true},
	{Method: http.MethodGet, Path: "/api/v1/rooms", Critical: false},
	{Method: http.MethodGet, Path: "/api/v1/courses/demand", Critical: false},
}

type result struct {
	Target            target
	CandidateStatus   int
	BaselineStatus    int
	StatusMatch       bool
	BodyMatch         bool
	Err               error
	CandidateDuration time.Duration
	BaselineDuration  time.Duration
}

func main() {
	var (
		candidateBase string
		baselineBase  string
		targetsPath   string
		timeout       time.Duration
	)

	flag.StringVar(&candidateBase, "candidate", "http://localhost:8080", "candidate deployment base URL")
	flag.StringVar(&baselineBase, "baseline", "http://localhost:8081", "baseline deployment base URL")
	flag.StringVar(&targetsPath, "targets", "", "optional JSON file overriding the default target list")
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
	breaking := 0
	informational := 0
	results := make([]result, 0, len(targets))

	for _, tgt := range targets {
		res := compare(client, candidateBase, baselineBase, tgt)
		if res.Err != nil || !res.StatusMatch || !res.BodyMatch {
			if tgt.Critical {
				breaking++
			} else {
				informational++
			}
		}
		results = append(results, res)
	}

	printReport(results)
	fmt.Printf("Breaking diffs: %d, informational diffs: %d\n", breaking, informational)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg struct {
		Targets []target `json:"targets"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets defined in %s", path)
	}
	return cfg.Targets, nil
}

func compare(client *http.Client, candidateBase, baselineBase string, tgt target) result {
	res := result{Target: tgt}

	candidateBody, candidateStatus, candidateDur, err := fetch(client, candidateBase, tgt)
	if err != nil {
		res.Err = fmt.Errorf("candidate request failed: %w", err)
		return res
	}
	baselineBody, baselineStatus, baselineDur, err := fetch(client, baselineBase, tgt)
	if err != nil {
		res.Err = fmt.Errorf("baseline request failed: %w", err)
		return res
	}

	res.CandidateStatus = candidateStatus
	res.BaselineStatus = baselineStatus
	res.CandidateDuration = candidateDur
	res.BaselineDuration = baselineDur
	res.StatusMatch = candidateStatus == baselineStatus
	res.BodyMatch = bodiesEqual(candidateBody, baselineBody)
	return res
}

func fetch(client *http.Client, base string, tgt target) ([]byte, int, time.Duration, error) {
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
		return nil, 0, 0, err
	}
	return body, resp.StatusCode, time.Since(start), nil
}

// bodiesEqual falls back to JSON-normalized comparison so key order and
// integer/float encoding differences do not count as diffs.
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

func printReport(results []result) {
	fmt.Println("Shadow Compare Report")
	fmt.Println("======================")
	for _, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Printf("[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		if res.Err != nil {
			fmt.Printf("  Error: %v\n", res.Err)
			continue
		}
		fmt.Printf("  Candidate: %d (%s) | Baseline: %d (%s)\n",
			res.CandidateStatus, res.CandidateDuration, res.BaselineStatus, res.BaselineDuration)
		fmt.Printf("  Status match: %t | Body match: %t | Critical: %t\n",
			res.StatusMatch, res.BodyMatch, res.Target.Critical)
	}
}
