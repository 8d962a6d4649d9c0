package ledger

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "sleepsleep.ledger.v1.LedgerService"

const (
	LedgerService_SignUp_FullMethodName     = "/" + ServiceName + "/SignUp"
	LedgerService_Wake_FullMethodName       = "/" + ServiceName + "/Wake"
	LedgerService_Sleep_FullMethodName      = "/" + ServiceName + "/Sleep"
	LedgerService_Status_FullMethodName     = "/" + ServiceName + "/Status"
	LedgerService_CancelLast_FullMethodName = "/" + ServiceName + "/CancelLast"
	LedgerService_History_FullMethodName    = "/" + ServiceName + "/History"
	LedgerService_Dump_FullMethodName       = "/" + ServiceName + "/Dump"
	LedgerService_Rebuild_FullMethodName    = "/" + ServiceName + "/Rebuild"
)

// LedgerServiceServer is the server API for the ledger service. Requests and
// responses are google.protobuf.Struct messages.
type LedgerServiceServer interface {
	SignUp(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Wake(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Sleep(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Status(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelLast(context.Context, *structpb.Struct) (*structpb.Struct, error)
	History(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Dump(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Rebuild(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(LedgerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LedgerService_ServiceDesc is the grpc.ServiceDesc for the ledger service.
var LedgerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignUp", Handler: unaryHandler(LedgerService_SignUp_FullMethodName, LedgerServiceServer.SignUp)},
		{MethodName: "Wake", Handler: unaryHandler(LedgerService_Wake_FullMethodName, LedgerServiceServer.Wake)},
		{MethodName: "Sleep", Handler: unaryHandler(LedgerService_Sleep_FullMethodName, LedgerServiceServer.Sleep)},
		{MethodName: "Status", Handler: unaryHandler(LedgerService_Status_FullMethodName, LedgerServiceServer.Status)},
		{MethodName: "CancelLast", Handler: unaryHandler(LedgerService_CancelLast_FullMethodName, LedgerServiceServer.CancelLast)},
		{MethodName: "History", Handler: unaryHandler(LedgerService_History_FullMethodName, LedgerServiceServer.History)},
		{MethodName: "Dump", Handler: unaryHandler(LedgerService_Dump_FullMethodName, LedgerServiceServer.Dump)},
		{MethodName: "Rebuild", Handler: unaryHandler(LedgerService_Rebuild_FullMethodName, LedgerServiceServer.Rebuild)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/services/ledger/api/grpc/ledger/service.proto",
}

// RegisterLedgerServiceServer registers srv on s.
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerService_ServiceDesc, srv)
}
