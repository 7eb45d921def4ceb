package api

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func dialTestGRPC(t *testing.T) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterQuoteEngineServer(s, NewGRPCHandler(newTestEngine(t)))
	grpc_health_v1.RegisterHealthServer(s, health.NewServer())
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, method string, req map[string]interface{}) (*structpb.Struct, error) {
	t.Helper()
	in, err := structpb.NewStruct(req)
	require.NoError(t, err)
	out := &structpb.Struct{}
	err = conn.Invoke(context.Background(), "/"+QuoteEngineServiceName+"/"+method, in, out)
	return out, err
}

func TestGRPCHandler_ExtractAttributes(t *testing.T) {
	conn := dialTestGRPC(t)

	out, err := invoke(t, conn, "ExtractAttributes", map[string]interface{}{
		"names": []interface{}{"190X45 H3.2 RAD SG8 JOIST 4.8M"},
	})
	require.NoError(t, err)

	items := out.Fields["items"].GetListValue().GetValues()
	require.Len(t, items, 1)
	attrs := items[0].GetStructValue().Fields["attributes"].GetStructValue()
	assert.Equal(t, "joist", attrs.Fields["type"].GetStringValue())
	assert.Equal(t, "H3.2", attrs.Fields["treatment"].GetStringValue())
	assert.Equal(t, 4800.0, attrs.Fields["length_mm"].GetNumberValue())
}

func TestGRPCHandler_BuildQuote(t *testing.T) {
	conn := dialTestGRPC(t)

	out, err := invoke(t, conn, "BuildQuote", map[string]interface{}{
		"job_type": "deck",
		"suggestions": []interface{}{
			map[string]interface{}{"name": "Posts", "searchTerm": "100x100 H4 post", "qtyToOrder": 4},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "NZD", out.Fields["currency"].GetStringValue())
	assert.False(t, out.Fields["finalizable"].GetBoolValue())
	assert.Equal(t, "128", out.Fields["total"].GetStringValue())
	findings := out.Fields["report"].GetStructValue().Fields["findings"].GetListValue().GetValues()
	require.NotEmpty(t, findings)
}

func TestGRPCHandler_ResolveItems(t *testing.T) {
	conn := dialTestGRPC(t)

	out, err := invoke(t, conn, "ResolveItems", map[string]interface{}{
		"suggestions": []interface{}{
			map[string]interface{}{"name": "Decking", "searchTerm": "140x32 H3.2 decking", "totalNeeded": "38.2"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, out.Fields["matched"].GetNumberValue())
	item := out.Fields["items"].GetListValue().GetValues()[0].GetStructValue()
	assert.Equal(t, 39.0, item.Fields["quantity"].GetNumberValue())
}

func TestGRPCHandler_ValidateQuote(t *testing.T) {
	conn := dialTestGRPC(t)

	out, err := invoke(t, conn, "ValidateQuote", map[string]interface{}{"job_type": "fence"})
	require.NoError(t, err)

	assert.Equal(t, 1.0, out.Fields["errors"].GetNumberValue())
	assert.False(t, out.Fields["finalizable"].GetBoolValue())
}

func TestGRPCHandler_SizeDeck_InvalidArgument(t *testing.T) {
	conn := dialTestGRPC(t)

	_, err := invoke(t, conn, "SizeDeck", map[string]interface{}{"length": 6})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	out, err := invoke(t, conn, "SizeDeck", map[string]interface{}{"length": 6, "width": 4})
	require.NoError(t, err)
	assert.Equal(t, "140x45", out.Fields["joist_size"].GetStringValue())
}

func TestGRPCHandler_BuildQuote_NoItems(t *testing.T) {
	conn := dialTestGRPC(t)

	_, err := invoke(t, conn, "BuildQuote", map[string]interface{}{"job_type": "deck"})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCHandler_Health(t *testing.T) {
	conn := dialTestGRPC(t)

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
}
