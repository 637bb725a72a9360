package chromatica

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestConnectionSendRoundTrip(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)
	fs.handle("Test.echo", func(params json.RawMessage) (json.RawMessage, *ProtocolError) {
		return params, nil
	})

	conn, err := Dial(context.Background(), fs.debuggerURL())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Disconnect()

	type echoParams struct {
		Value string `json:"value"`
	}
	var out echoParams
	err = conn.send(context.Background(), "Test.echo", "", mustMarshal(&echoParams{Value: "hi"}), &out)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if out.Value != "hi" {
		t.Fatalf("want %q, got %q", "hi", out.Value)
	}
}

func TestConnectionSendProtocolError(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)
	fs.handle("Test.fail", func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		return nil, &ProtocolError{Code: -32000, Message: "boom"}
	})

	conn, err := Dial(context.Background(), fs.debuggerURL())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Disconnect()

	err = conn.send(context.Background(), "Test.fail", "", nil, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	perr, ok := err.(*ProtocolError)
	if !ok {
		t.Fatalf("expected *ProtocolError, got %T: %v", err, err)
	}
	if perr.Code != -32000 || perr.Message != "boom" {
		t.Fatalf("unexpected protocol error: %+v", perr)
	}
}

func TestConnectionSubscribeReceivesEvent(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)

	conn, err := Dial(context.Background(), fs.debuggerURL())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Disconnect()

	sub := conn.subscribe([]string{"Test.ping"}, nil)
	defer sub.Drop()

	// Give the dialer's upgrade a moment to register fs.conn before emitting.
	time.Sleep(10 * time.Millisecond)
	fs.emit("Test.ping", "", map[string]string{"x": "y"})

	select {
	case msg, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscriber channel closed unexpectedly")
		}
		if msg.Method != "Test.ping" {
			t.Fatalf("want Test.ping, got %s", msg.Method)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestConnectionSubscribeFiltersBySession(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)

	conn, err := Dial(context.Background(), fs.debuggerURL())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Disconnect()

	sub := conn.subscribe([]string{"Test.ping"}, []string{"S1"})
	defer sub.Drop()

	time.Sleep(10 * time.Millisecond)
	fs.emit("Test.ping", "S2", nil)
	fs.emit("Test.ping", "S1", nil)

	select {
	case msg, ok := <-sub.Events():
		if !ok {
			t.Fatal("subscriber channel closed unexpectedly")
		}
		if msg.SessionID != "S1" {
			t.Fatalf("expected the S1 event to pass the filter, got session %q", msg.SessionID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
