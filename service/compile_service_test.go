package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/config"
	"github.com/gfour/souffle/ram"
)

type fakeCache struct {
	store map[string]*bytecode.Program
	gets  int
	puts  int
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string]*bytecode.Program{}} }

func (c *fakeCache) Get(fingerprint string) (*bytecode.Program, bool) {
	c.gets++
	p, ok := c.store[fingerprint]
	return p, ok
}

func (c *fakeCache) Put(fingerprint string, p *bytecode.Program) error {
	c.puts++
	c.store[fingerprint] = p
	return nil
}

func sampleWireProgram() *ram.Program {
	return &ram.Program{
		Relations: []ram.RelationDecl{{Name: "edge", Arity: 2, AttrTypes: []ram.AttrType{ram.AttrNumber, ram.AttrNumber}}},
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Create{Rel: ram.RelationRef{Name: "edge"}},
		}},
	}
}

func TestEncodeRequestDecodeRequestRoundTrip(t *testing.T) {
	prog := sampleWireProgram()
	data, err := EncodeRequest(prog, map[string][]ram.LexOrder{"edge": {{0, 1}}})
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}

	got, oracle, err := decodeRequest(data)
	if err != nil {
		t.Fatalf("decodeRequest: %v", err)
	}
	if len(got.Relations) != 1 || got.Relations[0].Name != "edge" {
		t.Fatalf("Relations = %#v", got.Relations)
	}
	if orders := oracle.IndexesFor("edge"); len(orders) != 1 {
		t.Errorf("IndexesFor(edge) = %v, want 1 order", orders)
	}
}

func TestCompileServiceRejectsEmptyPayload(t *testing.T) {
	svc := NewCompileService(nil, nil)
	_, err := svc.Compile(context.Background(), connect.NewRequest(wrapperspb.Bytes(nil)))
	if err == nil {
		t.Fatal("Compile should reject an empty payload")
	}
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("code = %v, want CodeInvalidArgument", connect.CodeOf(err))
	}
}

func TestCompileServiceRejectsGarbagePayload(t *testing.T) {
	svc := NewCompileService(nil, nil)
	_, err := svc.Compile(context.Background(), connect.NewRequest(wrapperspb.Bytes([]byte("not cbor"))))
	if err == nil {
		t.Fatal("Compile should reject a garbage payload")
	}
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("code = %v, want CodeInvalidArgument", connect.CodeOf(err))
	}
}

func TestCompileServiceCompilesAndCaches(t *testing.T) {
	cache := newFakeCache()
	svc := NewCompileService(cache, config.Default())

	data, err := EncodeRequest(sampleWireProgram(), nil)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}

	res, err := svc.Compile(context.Background(), connect.NewRequest(wrapperspb.Bytes(data)))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(res.Msg.GetValue()) == 0 {
		t.Fatal("expected a non-empty compiled response")
	}
	if cache.puts != 1 {
		t.Errorf("puts = %d, want 1 (a fresh compile should populate the cache)", cache.puts)
	}

	// a second call with the same payload should hit the cache and skip
	// decoding/compiling again.
	res2, err := svc.Compile(context.Background(), connect.NewRequest(wrapperspb.Bytes(data)))
	if err != nil {
		t.Fatalf("Compile (cached): %v", err)
	}
	if cache.puts != 1 {
		t.Errorf("puts = %d, want still 1 after a cache hit", cache.puts)
	}
	if string(res2.Msg.GetValue()) != string(res.Msg.GetValue()) {
		t.Error("cached response should be byte-identical to the fresh compile")
	}
}

func TestCompileServiceReportsFailedPreconditionOnCodegenFault(t *testing.T) {
	svc := NewCompileService(nil, nil)
	prog := &ram.Program{
		Main: &ram.Sequence{Stmts: []ram.Statement{
			&ram.Create{Rel: ram.RelationRef{Name: "ghost"}},
		}},
	}
	data, err := EncodeRequest(prog, nil)
	if err != nil {
		t.Fatalf("EncodeRequest: %v", err)
	}
	_, err = svc.Compile(context.Background(), connect.NewRequest(wrapperspb.Bytes(data)))
	if err == nil {
		t.Fatal("Compile should fail for a program referencing an undeclared relation")
	}
	if connect.CodeOf(err) != connect.CodeFailedPrecondition {
		t.Errorf("code = %v, want CodeFailedPrecondition", connect.CodeOf(err))
	}
}
