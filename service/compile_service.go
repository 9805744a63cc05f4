// Package service exposes ramc.Compile as a Connect/gRPC unary RPC. There
// is no protoc-generated stub for this procedure: the request and
// response are both a raw byte envelope (wrapperspb.BytesValue) carrying a
// CBOR-encoded payload of this package's own devising, wired directly
// through connect's generic handler and client constructors the way a
// generated *_connect.go file would be if a .proto for this shape existed.
package service

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/fxamacker/cbor/v2"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/gfour/souffle/analysis"
	"github.com/gfour/souffle/bytecode"
	"github.com/gfour/souffle/cache"
	"github.com/gfour/souffle/config"
	"github.com/gfour/souffle/internal/logging"
	"github.com/gfour/souffle/ram"
	"github.com/gfour/souffle/ramc"
)

var log = logging.Named("service")

// CompileProcedure is the RPC's path, in the same "/package.Service/Method"
// shape connect-go's codegen uses for its procedure constants.
const CompileProcedure = "/gfour.souffle.v1.CompileService/Compile"

// wireRequest is the CBOR payload carried inside the request's
// BytesValue. Indexes stands in for the externally supplied Oracle
// (analysis.Oracle's whole surface a caller can express over the wire is
// "which lex orders exist per relation": SearchSignature is computed from
// the pattern already embedded in the program itself, see
// analysis.StaticOracle).
type wireRequest struct {
	Program []byte
	Indexes map[string][]ram.LexOrder
}

var reqEncMode = mustCanonicalEncMode()

func mustCanonicalEncMode() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("service: failed to create CBOR enc mode: %v", err))
	}
	return em
}

// EncodeRequest packages prog and indexes into the bytes a Compile call
// sends as its request body. It is exported so a CLI or client can build a
// request without reaching into this package's wire format by hand.
func EncodeRequest(prog *ram.Program, indexes map[string][]ram.LexOrder) ([]byte, error) {
	programData, err := prog.Marshal()
	if err != nil {
		return nil, fmt.Errorf("service: marshal program: %w", err)
	}
	data, err := reqEncMode.Marshal(wireRequest{Program: programData, Indexes: indexes})
	if err != nil {
		return nil, fmt.Errorf("service: marshal request: %w", err)
	}
	return data, nil
}

func decodeRequest(data []byte) (*ram.Program, analysis.Oracle, error) {
	var w wireRequest
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, nil, fmt.Errorf("service: unmarshal request: %w", err)
	}
	prog, err := ram.UnmarshalProgram(w.Program)
	if err != nil {
		return nil, nil, fmt.Errorf("service: unmarshal program: %w", err)
	}
	return prog, analysis.NewStaticOracle(w.Indexes), nil
}

// CompileService implements the Compile RPC: decode a ram.Program off the
// wire, run it through ramc.Compile, and hand back the resulting
// bytecode.Program's own CBOR encoding, still wrapped in a BytesValue.
type CompileService struct {
	cache Cache
	cfg   *config.Config
}

// Cache is the subset of cache.Store this service needs; declared here so
// tests can substitute a fake without importing the cache package.
type Cache interface {
	Get(fingerprint string) (*bytecode.Program, bool)
	Put(fingerprint string, p *bytecode.Program) error
}

// NewCompileService creates a CompileService. cache may be nil, in which
// case every request is compiled fresh. cfg may be nil, in which case
// config.Default applies.
func NewCompileService(cache Cache, cfg *config.Config) *CompileService {
	if cfg == nil {
		cfg = config.Default()
	}
	return &CompileService{cache: cache, cfg: cfg}
}

// Compile implements the RPC.
func (s *CompileService) Compile(
	ctx context.Context,
	req *connect.Request[wrapperspb.BytesValue],
) (*connect.Response[wrapperspb.BytesValue], error) {
	reqBytes := req.Msg.GetValue()
	if len(reqBytes) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("empty request payload"))
	}

	fingerprint := fingerprintOf(reqBytes)
	if s.cache != nil {
		if p, ok := s.cache.Get(fingerprint); ok {
			return respond(p)
		}
	}

	prog, oracle, err := decodeRequest(reqBytes)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	p, err := ramc.CompileWithConfig(prog, oracle, s.cfg)
	if err != nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, err)
	}

	if s.cache != nil {
		if err := s.cache.Put(fingerprint, p); err != nil {
			log.Warning("failed to cache compiled program %s: %v", fingerprint, err)
		}
	}

	return respond(p)
}

func respond(p *bytecode.Program) (*connect.Response[wrapperspb.BytesValue], error) {
	data, err := p.Marshal()
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("service: marshal program: %w", err))
	}
	return connect.NewResponse(wrapperspb.Bytes(data)), nil
}

// fingerprintOf keys the compile cache by the request payload's digest
// directly, ahead of decoding it: an unchanged request never needs its
// ram.Program reconstructed at all on a cache hit.
func fingerprintOf(reqBytes []byte) string {
	return cache.Fingerprint(reqBytes)
}

// NewCompileServiceHandler mirrors the (path, handler) pair a codegen'd
// *_connect.go file returns from its NewXServiceHandler constructor.
func NewCompileServiceHandler(svc *CompileService, opts ...connect.HandlerOption) (string, http.Handler) {
	handler := connect.NewUnaryHandler(CompileProcedure, svc.Compile, opts...)
	return CompileProcedure, handler
}

// NewCompileServiceClient mirrors a codegen'd NewXServiceClient
// constructor: a thin typed wrapper around connect.NewClient bound to this
// RPC's procedure and message types.
func NewCompileServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CompileServiceClient {
	return &CompileServiceClient{
		client: connect.NewClient[wrapperspb.BytesValue, wrapperspb.BytesValue](httpClient, baseURL+CompileProcedure, opts...),
	}
}

// CompileServiceClient calls the Compile RPC.
type CompileServiceClient struct {
	client *connect.Client[wrapperspb.BytesValue, wrapperspb.BytesValue]
}

// Compile sends payload (built by EncodeRequest) and returns the compiled
// program's raw CBOR bytes.
func (c *CompileServiceClient) Compile(ctx context.Context, payload []byte) ([]byte, error) {
	res, err := c.client.CallUnary(ctx, connect.NewRequest(wrapperspb.Bytes(payload)))
	if err != nil {
		return nil, err
	}
	return res.Msg.GetValue(), nil
}
