package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eachchat/firebase-push/pkg/push"
)

func TestPushNoticeSuccess(t *testing.T) {
	var tokenHits int32
	tokenSrv := testTokenServer(t, &tokenHits, 3600)

	var sent map[string]interface{}
	msgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects/demo-project/messages:send", r.URL.Path)
		assert.Equal(t, "Bearer tok-abc", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"message_id":"m1"}]}`))
	}))
	defer msgSrv.Close()

	fb, err := New(testConfig(t, tokenSrv.URL, msgSrv.URL), nil)
	require.NoError(t, err)

	receipt, err := fb.PushNotice(context.Background(), &push.Message{
		Token:   "tok123",
		Payload: &push.Payload{Content: "Hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "m1", receipt.MessageID)

	message := sent["message"].(map[string]interface{})
	assert.Equal(t, "tok123", message["token"])
	assert.Equal(t, "Hello", message["notification"].(map[string]interface{})["body"])
	assert.NotContains(t, message, "data")
}

func TestPushNoticeProviderRejection(t *testing.T) {
	var tokenHits int32
	tokenSrv := testTokenServer(t, &tokenHits, 3600)

	msgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// the provider signals per-result errors on a 200 as well
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"error":"NotRegistered"}]}`))
	}))
	defer msgSrv.Close()

	fb, err := New(testConfig(t, tokenSrv.URL, msgSrv.URL), nil)
	require.NoError(t, err)

	_, err = fb.PushNotice(context.Background(), &push.Message{
		Token:   "tok123",
		Payload: &push.Payload{Content: "Hello"},
	})
	require.Error(t, err)

	var pe *push.Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, push.KindProvider, pe.Kind)
	assert.Equal(t, "NotRegistered", pe.Detail)
}

func TestPushNoticeServerFailure(t *testing.T) {
	var tokenHits int32
	tokenSrv := testTokenServer(t, &tokenHits, 3600)

	msgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer msgSrv.Close()

	fb, err := New(testConfig(t, tokenSrv.URL, msgSrv.URL), nil)
	require.NoError(t, err)

	_, err = fb.PushNotice(context.Background(), &push.Message{
		Token:   "tok123",
		Payload: &push.Payload{Content: "Hello"},
	})
	require.Error(t, err)

	var pe *push.Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, push.KindProvider, pe.Kind)
	assert.Equal(t, "Internal Server Error", pe.Detail)
}

func TestPushNoticeProviderErrorOnNon200JSON(t *testing.T) {
	var tokenHits int32
	tokenSrv := testTokenServer(t, &tokenHits, 3600)

	msgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"results":[{"error":"InvalidRegistration"}]}`))
	}))
	defer msgSrv.Close()

	fb, err := New(testConfig(t, tokenSrv.URL, msgSrv.URL), nil)
	require.NoError(t, err)

	_, err = fb.PushNotice(context.Background(), &push.Message{
		Token:   "tok123",
		Payload: &push.Payload{Content: "Hello"},
	})
	require.Error(t, err)

	var pe *push.Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, push.KindProvider, pe.Kind)
	assert.Equal(t, "InvalidRegistration", pe.Detail)
}

func TestPushNoticeMissingMessageID(t *testing.T) {
	var tokenHits int32
	tokenSrv := testTokenServer(t, &tokenHits, 3600)

	msgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{}]}`))
	}))
	defer msgSrv.Close()

	fb, err := New(testConfig(t, tokenSrv.URL, msgSrv.URL), nil)
	require.NoError(t, err)

	receipt, err := fb.PushNotice(context.Background(), &push.Message{
		Token:   "tok123",
		Payload: &push.Payload{Content: "Hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "", receipt.MessageID)
}

func TestPushNoticeInvalidAddressingMakesNoCalls(t *testing.T) {
	var tokenHits, msgHits int32
	tokenSrv := testTokenServer(t, &tokenHits, 3600)

	msgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&msgHits, 1)
	}))
	defer msgSrv.Close()

	fb, err := New(testConfig(t, tokenSrv.URL, msgSrv.URL), nil)
	require.NoError(t, err)

	_, err = fb.PushNotice(context.Background(), &push.Message{
		Payload: &push.Payload{Content: "Hello"},
	})
	require.Error(t, err)
	assert.Equal(t, push.KindInvalidArgument, push.KindOf(err))
	assert.Zero(t, atomic.LoadInt32(&tokenHits))
	assert.Zero(t, atomic.LoadInt32(&msgHits))
}

func TestPushNoticeUnreachableEndpoint(t *testing.T) {
	var tokenHits int32
	tokenSrv := testTokenServer(t, &tokenHits, 3600)

	msgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	msgSrv.Close() // nothing is listening anymore

	fb, err := New(testConfig(t, tokenSrv.URL, msgSrv.URL), nil)
	require.NoError(t, err)

	_, err = fb.PushNotice(context.Background(), &push.Message{
		Token:   "tok123",
		Payload: &push.Payload{Content: "Hello"},
	})
	require.Error(t, err)
	assert.Equal(t, push.KindNetwork, push.KindOf(err))
}

func TestPushNoticeReusesCachedToken(t *testing.T) {
	var tokenHits int32
	tokenSrv := testTokenServer(t, &tokenHits, 3600)

	msgSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"message_id":"m1"}]}`))
	}))
	defer msgSrv.Close()

	fb, err := New(testConfig(t, tokenSrv.URL, msgSrv.URL), nil)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := fb.PushNotice(ctx, &push.Message{
			Token:   "tok123",
			Payload: &push.Payload{Content: "Hello"},
		})
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&tokenHits))
}
