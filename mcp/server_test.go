package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/lvillar/orderpdf"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	gen := orderpdf.New(
		orderpdf.WithLogger(quietLogger()),
		orderpdf.WithSaver(orderpdf.DirSaver{Dir: dir}),
	)
	s := NewServerWithIO(nil, nil, quietLogger())
	RegisterDefaultTools(s, gen)
	RegisterDefaultResources(s)
	return s, dir
}

// run feeds raw lines to the server and returns every message it wrote.
func run(t *testing.T, s *Server, lines ...string) []map[string]interface{} {
	t.Helper()
	var output bytes.Buffer
	s.input = strings.NewReader(strings.Join(lines, "\n") + "\n")
	s.output = &output
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var msgs []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(output.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("unmarshaling %q: %v", line, err)
		}
		msgs = append(msgs, m)
	}
	return msgs
}

func sendRequest(t *testing.T, s *Server, method string, id int, params interface{}) jsonrpcResponse {
	t.Helper()

	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		req["params"] = params
	}

	reqBytes, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	reqBytes = append(reqBytes, '\n')

	var output bytes.Buffer
	s.input = bytes.NewReader(reqBytes)
	s.output = &output

	s.Run(context.Background())

	var resp jsonrpcResponse
	if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response %q: %v", output.String(), err)
	}
	return resp
}

func toolText(t *testing.T, resp jsonrpcResponse) string {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	b, _ := json.Marshal(resp.Result)
	var res ToolResult
	if err := json.Unmarshal(b, &res); err != nil {
		t.Fatalf("decoding tool result: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", res.Content[0].Text)
	}
	return res.Content[0].Text
}

func TestServerInitialize(t *testing.T) {
	s, _ := newTestServer(t)

	resp := sendRequest(t, s, "initialize", 1, map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities":    map[string]interface{}{},
		"clientInfo":      map[string]interface{}{"name": "test", "version": "1.0"},
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("result is not a map")
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Fatalf("unexpected protocol version: %v", result["protocolVersion"])
	}
	serverInfo, ok := result["serverInfo"].(map[string]interface{})
	if !ok {
		t.Fatal("missing serverInfo")
	}
	if serverInfo["name"] != "orderpdf-mcp" {
		t.Fatalf("unexpected server name: %v", serverInfo["name"])
	}
}

func TestServerToolsList(t *testing.T) {
	s, _ := newTestServer(t)

	resp := sendRequest(t, s, "tools/list", 2, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	result, _ := resp.Result.(map[string]interface{})
	tools, ok := result["tools"].([]interface{})
	if !ok {
		t.Fatal("tools is not an array")
	}

	toolNames := make(map[string]bool)
	for _, tool := range tools {
		if tm, ok := tool.(map[string]interface{}); ok {
			name, _ := tm["name"].(string)
			toolNames[name] = true
		}
	}
	for _, name := range []string{"generate_order_pdf", "generate_combined_pdf", "plan_document"} {
		if !toolNames[name] {
			t.Errorf("expected tool %q not found", name)
		}
	}
}

func TestServerPingAndUnknownMethod(t *testing.T) {
	s, _ := newTestServer(t)

	if resp := sendRequest(t, s, "ping", 4, nil); resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	resp := sendRequest(t, s, "nonexistent/method", 5, nil)
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Fatalf("expected -32601, got %+v", resp.Error)
	}
}

func TestServerUnknownTool(t *testing.T) {
	s, _ := newTestServer(t)
	resp := sendRequest(t, s, "tools/call", 6, map[string]interface{}{
		"name":      "nonexistent_tool",
		"arguments": map[string]interface{}{},
	})
	if resp.Error == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestGenerateOrderTool(t *testing.T) {
	s, dir := newTestServer(t)

	text := toolText(t, sendRequest(t, s, "tools/call", 7, map[string]interface{}{
		"name": "generate_order_pdf",
		"arguments": map[string]interface{}{
			"order": map[string]interface{}{
				"id":    "A1",
				"items": []interface{}{map[string]interface{}{"name": "Hoodie", "sku": "HD-01", "size": "m"}},
			},
		},
	}))

	var art orderpdf.Artifact
	if err := json.Unmarshal([]byte(text), &art); err != nil {
		t.Fatalf("decoding artifact %q: %v", text, err)
	}
	if art.Name != "order-A1.pdf" || art.Pages != 1 {
		t.Errorf("artifact = %+v", art)
	}
	if _, err := os.Stat(filepath.Join(dir, "order-A1.pdf")); err != nil {
		t.Errorf("artifact missing: %v", err)
	}
}

func TestGenerateOrderToolErrors(t *testing.T) {
	s, _ := newTestServer(t)
	for _, args := range []map[string]interface{}{
		{},
		{"order": map[string]interface{}{"id": "A1", "items": []interface{}{}}},
		{"order": map[string]interface{}{"id": "A1", "items": []interface{}{map[string]interface{}{}}}, "layout": "grid"},
	} {
		resp := sendRequest(t, s, "tools/call", 8, map[string]interface{}{
			"name":      "generate_order_pdf",
			"arguments": args,
		})
		b, _ := json.Marshal(resp.Result)
		if !strings.Contains(string(b), `"isError":true`) {
			t.Errorf("args %v: expected tool error, got %s", args, b)
		}
	}
}

func TestGenerateCombinedToolProgress(t *testing.T) {
	s, dir := newTestServer(t)

	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      9,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":  "generate_combined_pdf",
			"_meta": map[string]interface{}{"progressToken": "tok-1"},
			"arguments": map[string]interface{}{
				"groupByDate": true,
				"layout":      "compact",
				"response": map[string]interface{}{
					"success": true,
					"data": []interface{}{
						map[string]interface{}{"id": "B1", "createdAt": "2024-05-01T09:00:00Z", "items": []interface{}{map[string]interface{}{}, map[string]interface{}{}}},
						map[string]interface{}{"id": "B2", "createdAt": "2024-05-02T09:00:00Z", "items": []interface{}{map[string]interface{}{}}},
					},
				},
			},
		},
	}
	line, _ := json.Marshal(req)
	msgs := run(t, s, string(line))
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 3 notifications and a response", len(msgs))
	}

	for i, m := range msgs[:3] {
		if m["method"] != "notifications/progress" {
			t.Fatalf("message %d: %v", i, m)
		}
		p := m["params"].(map[string]interface{})
		if p["progressToken"] != "tok-1" || p["progress"] != float64(i+1) || p["total"] != float64(3) {
			t.Errorf("notification %d params = %v", i, p)
		}
	}
	if msgs[3]["id"] != float64(9) {
		t.Errorf("last message is not the response: %v", msgs[3])
	}
	for _, name := range []string{"orders-2024_05_01.pdf", "orders-2024_05_02.pdf"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}

func TestGenerateCombinedToolNeedsKey(t *testing.T) {
	s, _ := newTestServer(t)
	resp := sendRequest(t, s, "tools/call", 10, map[string]interface{}{
		"name": "generate_combined_pdf",
		"arguments": map[string]interface{}{
			"orders": []interface{}{map[string]interface{}{"id": "B1", "items": []interface{}{map[string]interface{}{}}}},
		},
	})
	b, _ := json.Marshal(resp.Result)
	if !strings.Contains(string(b), "groupKey is required") {
		t.Errorf("unexpected result: %s", b)
	}
}

func TestPlanDocumentTool(t *testing.T) {
	s, dir := newTestServer(t)

	text := toolText(t, sendRequest(t, s, "tools/call", 11, map[string]interface{}{
		"name": "plan_document",
		"arguments": map[string]interface{}{
			"orders": []interface{}{
				map[string]interface{}{"id": "P1", "items": []interface{}{map[string]interface{}{"name": "Cap"}}},
				map[string]interface{}{"id": "P2", "items": []interface{}{map[string]interface{}{"name": "Mug"}}},
			},
		},
	}))

	var plan struct {
		Pages []struct {
			Elements []struct {
				Kind string `json:"kind"`
				Text string `json:"text"`
			} `json:"elements"`
		} `json:"pages"`
	}
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		t.Fatalf("decoding plan: %v", err)
	}
	if len(plan.Pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(plan.Pages))
	}
	var first string
	for _, el := range plan.Pages[1].Elements {
		if el.Kind == "text" {
			first = el.Text
			break
		}
	}
	if first != "Order #P2" {
		t.Errorf("second page starts with %q", first)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Errorf("plan wrote %d files", len(entries))
	}
}

func TestSummaryResource(t *testing.T) {
	s, _ := newTestServer(t)
	path := filepath.Join(t.TempDir(), "orders.json")
	data := `{"success": true, "data": [
		{"id": "S1", "createdAt": "2024-05-01T09:00:00Z", "items": [{}, {}]},
		{"id": "S2", "items": [{}]}
	]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	resp := sendRequest(t, s, "resources/read", 12, map[string]interface{}{
		"uri": "orders://summary?path=" + path,
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	b, _ := json.Marshal(resp.Result)
	var result struct {
		Contents []ResourceContent `json:"contents"`
	}
	json.Unmarshal(b, &result)
	if len(result.Contents) != 1 {
		t.Fatalf("contents = %s", b)
	}
	var summary struct {
		Orders int `json:"orders"`
		Items  int `json:"items"`
		Groups []struct {
			Key      string `json:"key"`
			Artifact string `json:"artifact"`
		} `json:"groups"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &summary); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if summary.Orders != 2 || summary.Items != 3 || len(summary.Groups) != 2 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Groups[0].Artifact != "orders-2024_05_01.pdf" || summary.Groups[1].Key != "undated" {
		t.Errorf("groups = %+v", summary.Groups)
	}
}

func TestSummaryResourceErrors(t *testing.T) {
	s, _ := newTestServer(t)
	for _, uri := range []string{"orders://summary", "orders://summary?path=/does/not/exist.json", "orders://other"} {
		resp := sendRequest(t, s, "resources/read", 13, map[string]interface{}{"uri": uri})
		if resp.Error == nil {
			t.Errorf("%s: expected error", uri)
		}
	}
}

func TestServerMultipleRequests(t *testing.T) {
	s, _ := newTestServer(t)
	msgs := run(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"resources/list"}`,
		`{"jsonrpc":"2.0","id":4,"method":"ping"}`,
	)
	if len(msgs) != 4 {
		t.Fatalf("expected 4 responses, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m["error"] != nil {
			t.Errorf("response %d: unexpected error: %v", i, m["error"])
		}
	}
}

func TestToolAddTool(t *testing.T) {
	s := NewServerWithIO(nil, nil, quietLogger())
	s.AddTool(Tool{
		Name:        "custom_tool",
		Description: "A custom test tool",
		InputSchema: map[string]interface{}{"type": "object"},
		Handler: func(call *Call) (ToolResult, error) {
			call.Progress(1, 1) // no token, no notification
			return ToolResult{Content: []ContentBlock{{Type: "text", Text: "custom result"}}}, nil
		},
	})

	if got := toolText(t, sendRequest(t, s, "tools/call", 1, map[string]interface{}{"name": "custom_tool"})); got != "custom result" {
		t.Fatalf("unexpected result: %s", got)
	}
}
