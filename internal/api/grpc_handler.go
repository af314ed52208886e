package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"ecommerce-dashboard/internal/dashboard"
	"ecommerce-dashboard/internal/logger"
)

// DashboardServiceName is the fully qualified gRPC service name.
const DashboardServiceName = "dashboard.v1.DashboardService"

// DashboardServer is the gRPC surface of the dashboard. Requests and responses
// are google.protobuf.Struct messages carrying the same fields as the JSON API.
type DashboardServer interface {
	GetOptions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// DashboardServiceDesc describes DashboardServer for grpc.Server.RegisterService.
var DashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: DashboardServiceName,
	HandlerType: (*DashboardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetOptions", Handler: getOptionsHandler},
		{MethodName: "Evaluate", Handler: evaluateHandler},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterDashboardServer registers srv on s.
func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardServer) {
	s.RegisterService(&DashboardServiceDesc, srv)
}

func getOptionsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).GetOptions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + DashboardServiceName + "/GetOptions"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardServer).GetOptions(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func evaluateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + DashboardServiceName + "/Evaluate"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// GRPCHandler implements DashboardServer.
type GRPCHandler struct {
	dash     dashboard.Provider
	logg     *logger.Logger
	validate *validator.Validate
}

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(dash dashboard.Provider, logg *logger.Logger) *GRPCHandler {
	if logg == nil {
		logg = logger.Nop()
	}
	return &GRPCHandler{
		dash:     dash,
		logg:     logg,
		validate: validator.New(),
	}
}

// GetOptions returns the widget choices and global price bounds. The request is ignored.
func (g *GRPCHandler) GetOptions(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return g.toStruct(ctx, g.dash.Options())
}

// Evaluate runs one interaction. Recognised request fields are states,
// categories (lists of strings), price_min and price_max (numbers). Absent
// fields take the widget defaults.
func (g *GRPCHandler) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input, err := filterInputFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	filter, err := input.Resolve(g.validate, g.dash.Options())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return g.toStruct(ctx, g.dash.Evaluate(ctx, surfaceGRPC, filter))
}

// toStruct converts a JSON-tagged value into a Struct so both APIs share field names.
func (g *GRPCHandler) toStruct(ctx context.Context, v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		g.logg.Error(ctx, "grpc.encode_response", err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		g.logg.Error(ctx, "grpc.encode_response", err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		g.logg.Error(ctx, "grpc.encode_response", err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

func filterInputFromStruct(req *structpb.Struct) (FilterInput, error) {
	var in FilterInput
	fields := req.GetFields()

	var err error
	if in.States, err = stringListField(fields, "states"); err != nil {
		return FilterInput{}, err
	}
	if in.Categories, err = stringListField(fields, "categories"); err != nil {
		return FilterInput{}, err
	}
	if in.PriceMin, err = numberField(fields, "price_min"); err != nil {
		return FilterInput{}, err
	}
	if in.PriceMax, err = numberField(fields, "price_max"); err != nil {
		return FilterInput{}, err
	}
	return in, nil
}

func stringListField(fields map[string]*structpb.Value, key string) ([]string, error) {
	v, ok := fields[key]
	if !ok {
		return nil, nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: %s must be a list of strings", errInvalidFilter, key)
	}
	out := make([]string, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a list of strings", errInvalidFilter, key)
		}
		out = append(out, s.StringValue)
	}
	return out, nil
}

func numberField(fields map[string]*structpb.Value, key string) (*float64, error) {
	v, ok := fields[key]
	if !ok {
		return nil, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		return &n, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a number", errInvalidFilter, key)
	}
}

// UnaryLoggingInterceptor logs every unary call with its method, status code and duration.
func UnaryLoggingInterceptor(logg *logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		logCtx := logg.WithFields(ctx, map[string]any{
			"method":      info.FullMethod,
			"code":        status.Code(err).String(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		switch status.Code(err) {
		case codes.OK:
			logg.Info(logCtx, "grpc.request")
		case codes.InvalidArgument:
			logg.Warn(logCtx, "grpc.request")
		default:
			logg.Error(logCtx, "grpc.request", err)
		}
		return resp, err
	}
}
