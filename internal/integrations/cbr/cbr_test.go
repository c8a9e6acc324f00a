package cbr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/budget-debts/internal/cache"
	"github.com/Dan9191/budget-debts/internal/config"
)

const keyRateResponse = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <KeyRateResponse xmlns="http://web.cbr.ru/">
      <KeyRateResult>
        <diffgr:diffgram xmlns:msdata="urn:schemas-microsoft-com:xml-msdata" xmlns:diffgr="urn:schemas-microsoft-com:xml-diffgram-v1">
          <KeyRate xmlns="">
            <KR diffgr:id="KR1" msdata:rowOrder="0">
              <DT>2025-03-03T00:00:00+03:00</DT>
              <Rate>21.00</Rate>
            </KR>
            <KR diffgr:id="KR2" msdata:rowOrder="1">
              <DT>2025-02-28T00:00:00+03:00</DT>
              <Rate>20.50</Rate>
            </KR>
          </KeyRate>
        </diffgr:diffgram>
      </KeyRateResult>
    </KeyRateResponse>
  </soap:Body>
</soap:Envelope>`

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestClient(url string) *CBRClient {
	cfg := &config.Config{
		CBRURL:        url,
		RateMarginPct: decimal.RequireFromString("5"),
		RateCacheTTL:  time.Hour,
	}
	c := NewCBRClient(cfg, cache.NewMemoryCache(), quietLogger())
	c.now = func() time.Time { return time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC) }
	return c
}

func TestParseXMLResponse(t *testing.T) {
	rate, err := parseXMLResponse([]byte(keyRateResponse))
	require.NoError(t, err)
	assert.Equal(t, "21", rate.String())
}

func TestParseXMLResponse_Errors(t *testing.T) {
	_, err := parseXMLResponse([]byte("not xml <"))
	assert.Error(t, err)

	_, err = parseXMLResponse([]byte(`<Envelope><Body/></Envelope>`))
	assert.ErrorContains(t, err, "no key rate data")

	_, err = parseXMLResponse([]byte(`<diffgram><KeyRate><KR><Rate>n/a</Rate></KR></KeyRate></diffgram>`))
	assert.ErrorContains(t, err, "failed to parse rate")
}

func TestBuildSOAPRequest_UsesThirtyDayWindow(t *testing.T) {
	c := newTestClient("http://unused")
	req := c.buildSOAPRequest()
	assert.Contains(t, req, "<fromDate>2025-02-02</fromDate>")
	assert.Contains(t, req, "<ToDate>2025-03-04</ToDate>")
}

func TestGetKeyRate_AddsMarginAndCaches(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "application/soap+xml"))
		_, _ = w.Write([]byte(keyRateResponse))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	ctx := context.Background()

	rate, err := c.GetKeyRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "26", rate.String())

	rate, err = c.GetKeyRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "26", rate.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestGetKeyRate_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetKeyRate(context.Background())
	assert.ErrorContains(t, err, "unexpected status code: 502")
}
