package logger

import (
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
)

var (
	apiMu  sync.Mutex
	apiLog *log.Logger
)

// SetAPIWriter enables the data-API traffic dump. A nil writer disables it.
func SetAPIWriter(w io.Writer) {
	apiMu.Lock()
	defer apiMu.Unlock()
	if w == nil {
		apiLog = nil
		return
	}
	apiLog = log.New(w, "", log.LstdFlags)
}

// APIDumpEnabled reports whether request/response bodies are being recorded.
func APIDumpEnabled() bool {
	apiMu.Lock()
	defer apiMu.Unlock()
	return apiLog != nil
}

type apiSection struct {
	Title string
	Body  string
}

func logAPI(kind, purpose string, sections []apiSection) {
	apiMu.Lock()
	l := apiLog
	apiMu.Unlock()
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[API]")
	if kind != "" {
		b.WriteString("[" + kind + "]")
	}
	if purpose != "" {
		b.WriteString("[" + purpose + "]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		t := strings.TrimSpace(sec.Title)
		if t == "" {
			t = "CONTENT"
		}
		b.WriteString("--- " + t + " ---\n")
		b.WriteString(sec.Body)
		if !strings.HasSuffix(sec.Body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	l.Print(b.String())
}

func LogAPIRequest(purpose, url string) {
	logAPI("request", purpose, []apiSection{{Title: "URL", Body: url}})
}

func LogAPIResponse(purpose string, status int, body string) {
	logAPI("response", purpose, []apiSection{
		{Title: "STATUS", Body: strconv.Itoa(status)},
		{Title: "BODY", Body: body},
	})
}
