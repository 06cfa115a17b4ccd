// Package commercev1 declares the commerce gRPC services. Requests and responses
// are google.protobuf.Struct values; the field names of each method are listed on
// its server interface.
package commercev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	AccountService_Register_FullMethodName     = "/commerce.v1.AccountService/Register"
	AccountService_Login_FullMethodName        = "/commerce.v1.AccountService/Login"
	AccountService_ConfirmEmail_FullMethodName = "/commerce.v1.AccountService/ConfirmEmail"

	BuyingService_CreateContract_FullMethodName    = "/commerce.v1.BuyingService/CreateContract"
	BuyingService_CheckCourseAccess_FullMethodName = "/commerce.v1.BuyingService/CheckCourseAccess"

	SocialService_ProvisionGuests_FullMethodName = "/commerce.v1.SocialService/ProvisionGuests"
	SocialService_MentionUser_FullMethodName     = "/commerce.v1.SocialService/MentionUser"
	SocialService_PublishPost_FullMethodName     = "/commerce.v1.SocialService/PublishPost"
)

// unaryMethod adapts a typed server method to a grpc.MethodDesc handler.
func unaryMethod[S any](fullMethod string, call func(S, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(S), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func invoke(ctx context.Context, cc grpc.ClientConnInterface, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

// AccountServiceServer is the server API for AccountService.
//
//	Register      {service, fields{...}}       -> {user{...}, token}
//	Login         {service, fields{...}}       -> {user{...}, token}
//	ConfirmEmail  {token}                      -> {user{...}}
type AccountServiceServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmEmail(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedAccountServiceServer returns Unimplemented for every method.
type UnimplementedAccountServiceServer struct{}

func (UnimplementedAccountServiceServer) Register(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("Register")
}

func (UnimplementedAccountServiceServer) Login(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("Login")
}

func (UnimplementedAccountServiceServer) ConfirmEmail(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("ConfirmEmail")
}

// AccountService_ServiceDesc is the grpc.ServiceDesc for AccountService.
var AccountService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "commerce.v1.AccountService",
	HandlerType: (*AccountServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryMethod(AccountService_Register_FullMethodName, AccountServiceServer.Register)},
		{MethodName: "Login", Handler: unaryMethod(AccountService_Login_FullMethodName, AccountServiceServer.Login)},
		{MethodName: "ConfirmEmail", Handler: unaryMethod(AccountService_ConfirmEmail_FullMethodName, AccountServiceServer.ConfirmEmail)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "commerce/v1/commerce.proto",
}

// RegisterAccountServiceServer registers srv on s.
func RegisterAccountServiceServer(s grpc.ServiceRegistrar, srv AccountServiceServer) {
	s.RegisterService(&AccountService_ServiceDesc, srv)
}

// AccountServiceClient is the client API for AccountService.
type AccountServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAccountServiceClient returns a client using cc.
func NewAccountServiceClient(cc grpc.ClientConnInterface) *AccountServiceClient {
	return &AccountServiceClient{cc: cc}
}

func (c *AccountServiceClient) Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, AccountService_Register_FullMethodName, in, opts...)
}

func (c *AccountServiceClient) Login(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, AccountService_Login_FullMethodName, in, opts...)
}

func (c *AccountServiceClient) ConfirmEmail(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, AccountService_ConfirmEmail_FullMethodName, in, opts...)
}

// BuyingServiceServer is the server API for BuyingService. Both methods act for
// the authenticated user.
//
//	CreateContract     {package_id, receipt}  -> {contract{...}}
//	CheckCourseAccess  {course_id}            -> {allowed, reason}
type BuyingServiceServer interface {
	CreateContract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CheckCourseAccess(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedBuyingServiceServer returns Unimplemented for every method.
type UnimplementedBuyingServiceServer struct{}

func (UnimplementedBuyingServiceServer) CreateContract(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("CreateContract")
}

func (UnimplementedBuyingServiceServer) CheckCourseAccess(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("CheckCourseAccess")
}

// BuyingService_ServiceDesc is the grpc.ServiceDesc for BuyingService.
var BuyingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "commerce.v1.BuyingService",
	HandlerType: (*BuyingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateContract", Handler: unaryMethod(BuyingService_CreateContract_FullMethodName, BuyingServiceServer.CreateContract)},
		{MethodName: "CheckCourseAccess", Handler: unaryMethod(BuyingService_CheckCourseAccess_FullMethodName, BuyingServiceServer.CheckCourseAccess)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "commerce/v1/commerce.proto",
}

// RegisterBuyingServiceServer registers srv on s.
func RegisterBuyingServiceServer(s grpc.ServiceRegistrar, srv BuyingServiceServer) {
	s.RegisterService(&BuyingService_ServiceDesc, srv)
}

// BuyingServiceClient is the client API for BuyingService.
type BuyingServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewBuyingServiceClient returns a client using cc.
func NewBuyingServiceClient(cc grpc.ClientConnInterface) *BuyingServiceClient {
	return &BuyingServiceClient{cc: cc}
}

func (c *BuyingServiceClient) CreateContract(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, BuyingService_CreateContract_FullMethodName, in, opts...)
}

func (c *BuyingServiceClient) CheckCourseAccess(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, BuyingService_CheckCourseAccess_FullMethodName, in, opts...)
}

// SocialServiceServer is the server API for SocialService.
//
//	ProvisionGuests  {event_id}             -> {created[...], skipped[...]}
//	MentionUser      {comment_id, user_id}  -> {}
//	PublishPost      {event_id?, body}      -> {post{...}}
type SocialServiceServer interface {
	ProvisionGuests(context.Context, *structpb.Struct) (*structpb.Struct, error)
	MentionUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PublishPost(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedSocialServiceServer returns Unimplemented for every method.
type UnimplementedSocialServiceServer struct{}

func (UnimplementedSocialServiceServer) ProvisionGuests(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("ProvisionGuests")
}

func (UnimplementedSocialServiceServer) MentionUser(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("MentionUser")
}

func (UnimplementedSocialServiceServer) PublishPost(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("PublishPost")
}

// SocialService_ServiceDesc is the grpc.ServiceDesc for SocialService.
var SocialService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "commerce.v1.SocialService",
	HandlerType: (*SocialServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ProvisionGuests", Handler: unaryMethod(SocialService_ProvisionGuests_FullMethodName, SocialServiceServer.ProvisionGuests)},
		{MethodName: "MentionUser", Handler: unaryMethod(SocialService_MentionUser_FullMethodName, SocialServiceServer.MentionUser)},
		{MethodName: "PublishPost", Handler: unaryMethod(SocialService_PublishPost_FullMethodName, SocialServiceServer.PublishPost)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "commerce/v1/commerce.proto",
}

// RegisterSocialServiceServer registers srv on s.
func RegisterSocialServiceServer(s grpc.ServiceRegistrar, srv SocialServiceServer) {
	s.RegisterService(&SocialService_ServiceDesc, srv)
}

// SocialServiceClient is the client API for SocialService.
type SocialServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewSocialServiceClient returns a client using cc.
func NewSocialServiceClient(cc grpc.ClientConnInterface) *SocialServiceClient {
	return &SocialServiceClient{cc: cc}
}

func (c *SocialServiceClient) ProvisionGuests(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, SocialService_ProvisionGuests_FullMethodName, in, opts...)
}

func (c *SocialServiceClient) MentionUser(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, SocialService_MentionUser_FullMethodName, in, opts...)
}

func (c *SocialServiceClient) PublishPost(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, SocialService_PublishPost_FullMethodName, in, opts...)
}
