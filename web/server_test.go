package web

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/slazery/kinect2-HSV-thresholder/rimage"
	"github.com/slazery/kinect2-HSV-thresholder/threshold"
)

func newTestServer(t *testing.T) (*Server, *threshold.Store, http.Handler) {
	t.Helper()
	store := threshold.NewStore(threshold.DefaultRange())
	s := NewServer(store, golog.NewTestLogger(t))
	return s, store, s.Handler()
}

func postThreshold(handler http.Handler, channel, bound, value string) *httptest.ResponseRecorder {
	form := url.Values{"value": {value}}
	req := httptest.NewRequest(http.MethodPost,
		"/api/thresholds/"+channel+"/"+bound, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGetThresholds(t *testing.T) {
	_, store, handler := newTestServer(t)
	test.That(t, store.SetUpper(threshold.Hue, 90), test.ShouldBeTrue)

	req := httptest.NewRequest(http.MethodGet, "/api/thresholds", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)

	var resp map[string]channelBounds
	test.That(t, json.NewDecoder(rec.Body).Decode(&resp), test.ShouldBeNil)
	test.That(t, resp, test.ShouldHaveLength, 3)
	test.That(t, resp["hue"].Upper, test.ShouldEqual, 90)
	test.That(t, resp["hue"].Max, test.ShouldEqual, 179)
	test.That(t, resp["saturation"].Upper, test.ShouldEqual, 255)
}

func TestSetThreshold(t *testing.T) {
	_, store, handler := newTestServer(t)

	rec := postThreshold(handler, "hue", "lower", "40")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNoContent)
	test.That(t, store.Lower(threshold.Hue), test.ShouldEqual, 40)

	rec = postThreshold(handler, "value", "upper", "200")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNoContent)
	test.That(t, store.Upper(threshold.Value), test.ShouldEqual, 200)
}

func TestSetThresholdRejected(t *testing.T) {
	_, store, handler := newTestServer(t)

	// out of the hue domain
	rec := postThreshold(handler, "hue", "upper", "255")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusUnprocessableEntity)
	test.That(t, store.Upper(threshold.Hue), test.ShouldEqual, 179)

	// would invert the range
	test.That(t, store.SetUpper(threshold.Hue, 50), test.ShouldBeTrue)
	rec = postThreshold(handler, "hue", "lower", "60")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusUnprocessableEntity)
	test.That(t, store.Lower(threshold.Hue), test.ShouldEqual, 0)
}

func TestSetThresholdBadRequest(t *testing.T) {
	_, _, handler := newTestServer(t)

	rec := postThreshold(handler, "hue", "lower", "not-a-number")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusBadRequest)

	rec = postThreshold(handler, "chroma", "lower", "10")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNotFound)

	rec = postThreshold(handler, "hue", "middle", "10")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNotFound)
}

func TestPreview(t *testing.T) {
	s, _, handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/preview.png", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusNotFound)

	m := rimage.NewMask(4, 3)
	m.Set(1, 1, true)
	s.Present(m)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, rec.Header().Get("Content-Type"), test.ShouldEqual, "image/png")

	img, err := png.Decode(rec.Body)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 4)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 3)
}
