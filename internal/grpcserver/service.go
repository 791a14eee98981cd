package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"gamenight/pkg/models"
)

const serviceName = "gamenight.CollectionService"

type SyncRequest struct {
	User    string `json:"user"`
	Refresh bool   `json:"refresh,omitempty"`
}

type SyncResponse struct {
	Found      bool                   `json:"found"`
	Collection *models.CollectionInfo `json:"collection,omitempty"`
	Games      []models.Game          `json:"games"`
}

type ResolveGamesRequest struct {
	Collection models.CollectionInfo `json:"collection"`
}

type ResolveGamesResponse struct {
	Games      []models.Game `json:"games"`
	Incomplete bool          `json:"incomplete,omitempty"`
}

type GetGameRequest struct {
	ID string `json:"id"`
}

type GetGameResponse struct {
	Game models.Game `json:"game"`
}

type GroupGamesRequest struct {
	Users []string `json:"users"`
}

type GroupGamesResponse struct {
	Games []models.Game `json:"games"`
}

// CollectionServiceServer is implemented by Server.
type CollectionServiceServer interface {
	Sync(context.Context, *SyncRequest) (*SyncResponse, error)
	ResolveGames(context.Context, *ResolveGamesRequest) (*ResolveGamesResponse, error)
	GetGame(context.Context, *GetGameRequest) (*GetGameResponse, error)
	GroupGames(context.Context, *GroupGamesRequest) (*GroupGamesResponse, error)
}

func RegisterCollectionServiceServer(s grpc.ServiceRegistrar, srv CollectionServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CollectionServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Sync", Handler: unary("Sync", func(s CollectionServiceServer, ctx context.Context, in *SyncRequest) (any, error) {
			return s.Sync(ctx, in)
		})},
		{MethodName: "ResolveGames", Handler: unary("ResolveGames", func(s CollectionServiceServer, ctx context.Context, in *ResolveGamesRequest) (any, error) {
			return s.ResolveGames(ctx, in)
		})},
		{MethodName: "GetGame", Handler: unary("GetGame", func(s CollectionServiceServer, ctx context.Context, in *GetGameRequest) (any, error) {
			return s.GetGame(ctx, in)
		})},
		{MethodName: "GroupGames", Handler: unary("GroupGames", func(s CollectionServiceServer, ctx context.Context, in *GroupGamesRequest) (any, error) {
			return s.GroupGames(ctx, in)
		})},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "gamenight/collection",
}

// unary adapts a typed method to grpc's method handler shape.
func unary[Req any](method string, call func(CollectionServiceServer, context.Context, *Req) (any, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(CollectionServiceServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*Req))
		})
	}
}

// Client calls the collection service over a JSON-coded connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Sync(ctx context.Context, in *SyncRequest, opts ...grpc.CallOption) (*SyncResponse, error) {
	out := new(SyncResponse)
	if err := c.invoke(ctx, "Sync", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ResolveGames(ctx context.Context, in *ResolveGamesRequest, opts ...grpc.CallOption) (*ResolveGamesResponse, error) {
	out := new(ResolveGamesResponse)
	if err := c.invoke(ctx, "ResolveGames", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetGame(ctx context.Context, in *GetGameRequest, opts ...grpc.CallOption) (*GetGameResponse, error) {
	out := new(GetGameResponse)
	if err := c.invoke(ctx, "GetGame", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GroupGames(ctx context.Context, in *GroupGamesRequest, opts ...grpc.CallOption) (*GroupGamesResponse, error) {
	out := new(GroupGamesResponse)
	if err := c.invoke(ctx, "GroupGames", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...)
}
