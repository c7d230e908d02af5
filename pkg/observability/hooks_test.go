package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnBuildStart(ctx, "hits.tsv")
	p.OnBuildComplete(ctx, "hits.tsv", 120, 45, time.Second, nil)
	p.OnRenderStart(ctx, []string{"krona-xml"})
	p.OnRenderComplete(ctx, []string{"krona-xml"}, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, KeyRecord)
	c.OnCacheMiss(ctx, KeyArtifact)
	c.OnCacheSet(ctx, KeyRecord, 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "www.ebi.ac.uk", "/Tools/dbfetch/dbfetch")
	h.OnResponse(ctx, "POST", "www.ebi.ac.uk", "/Tools/dbfetch/dbfetch", 200, time.Second)
	h.OnError(ctx, "POST", "www.ebi.ac.uk", "/Tools/dbfetch/dbfetch", errors.New("timeout"))
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	pipeline := &testPipelineHooks{}
	SetPipelineHooks(pipeline)
	cache := &testCacheHooks{}
	SetCacheHooks(cache)
	http := &testHTTPHooks{}
	SetHTTPHooks(http)

	if Pipeline() != pipeline || Cache() != cache || HTTP() != http {
		t.Error("Set*Hooks did not register the custom hooks")
	}

	Cache().OnCacheHit(context.Background(), KeyRecord)
	if cache.hits != 1 {
		t.Errorf("hits = %d, want 1", cache.hits)
	}

	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
}

type testPipelineHooks struct{ NoopPipelineHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

type testCacheHooks struct {
	NoopCacheHooks
	hits int
}

func (c *testCacheHooks) OnCacheHit(context.Context, string) { c.hits++ }
