package chromatica

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	cdppage "github.com/chromatica-go/chromatica/cdp/page"
	"github.com/ledongthuc/pdf"
	"github.com/orisano/pixelmatch"
)

// buildMinimalPDF assembles a one-page PDF byte stream, tracking each
// object's byte offset via buf.Len() as it is written rather than
// hand-counting literal offsets, so the xref table it emits is guaranteed
// consistent with the bytes that precede it.
func buildMinimalPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	var offsets []int
	writeObj := func(n int, body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}

	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 200 200] /Resources << >> >>")

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(offsets)+1, xrefOffset)

	return buf.Bytes()
}

func TestFrameScreenshotMatchesCapturedImage(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)
	fs.withPageTarget()

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	pngBytes := pngBuf.Bytes()

	fs.handle(cdppage.CommandCaptureScreenshot, func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		return jsonResult(cdppage.CaptureScreenshotResult{Data: pngBytes}), nil
	})

	browser, err := NewBrowser(context.Background(), fs.debuggerURL())
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}
	defer browser.Close()

	target, err := browser.NewPage(context.Background(), "")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	root := target.RootFrame()

	shot, err := root.Screenshot(context.Background(), "png", 0)
	if err != nil {
		t.Fatalf("Screenshot: %v", err)
	}
	if !bytes.Equal(shot, pngBytes) {
		t.Fatal("expected the decoded base64 screenshot bytes to round-trip exactly")
	}

	got, _, err := image.Decode(bytes.NewReader(shot))
	if err != nil {
		t.Fatalf("decode screenshot: %v", err)
	}
	n, err := pixelmatch.MatchPixel(got, img)
	if err != nil {
		t.Fatalf("MatchPixel: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected an identical screenshot to diff to 0 pixels, got %d", n)
	}
}

func TestFramePrintToPDFProducesReadableDocument(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)
	fs.withPageTarget()

	pdfBytes := buildMinimalPDF()
	fs.handle(cdppage.CommandPrintToPDF, func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		return jsonResult(cdppage.PrintToPDFResult{Data: pdfBytes}), nil
	})

	browser, err := NewBrowser(context.Background(), fs.debuggerURL())
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}
	defer browser.Close()

	target, err := browser.NewPage(context.Background(), "")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	root := target.RootFrame()

	data, err := root.PrintToPDF(context.Background(), nil)
	if err != nil {
		t.Fatalf("PrintToPDF: %v", err)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("pdf.NewReader: %v", err)
	}
	if got := r.NumPage(); got != 1 {
		t.Fatalf("want 1 page, got %d", got)
	}
}

func TestFrameNavigateWaitsForLifecycleEvent(t *testing.T) {
	t.Parallel()
	fs := newFakeServer(t)
	fs.withPageTarget()

	fs.handle(cdppage.CommandNavigate, func(json.RawMessage) (json.RawMessage, *ProtocolError) {
		go func() {
			time.Sleep(50 * time.Millisecond)
			fs.emit(cdppage.EventLifecycleEvent, "S1", cdppage.LifecycleEventParams{FrameID: "F1", Name: "init"})
			fs.emit(cdppage.EventLifecycleEvent, "S1", cdppage.LifecycleEventParams{FrameID: "F1", Name: "DOMContentLoaded"})
			fs.emit(cdppage.EventLifecycleEvent, "S1", cdppage.LifecycleEventParams{FrameID: "F1", Name: "load"})
		}()
		return jsonResult(cdppage.NavigateResult{FrameID: "F1"}), nil
	})

	browser, err := NewBrowser(context.Background(), fs.debuggerURL())
	if err != nil {
		t.Fatalf("NewBrowser: %v", err)
	}
	defer browser.Close()

	target, err := browser.NewPage(context.Background(), "")
	if err != nil {
		t.Fatalf("NewPage: %v", err)
	}
	root := target.RootFrame()

	if err := root.Navigate(context.Background(), "https://example.com", "load", 5*time.Second); err != nil {
		t.Fatalf("Navigate: %v", err)
	}
}
