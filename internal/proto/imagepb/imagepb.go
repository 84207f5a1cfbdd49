// Package imagepb holds hand-maintained bindings for image.proto. Field
// numbers and wire types must stay in sync with the enhancement service's
// schema.
package imagepb

import (
	"context"

	"github.com/golang/protobuf/proto"
	"google.golang.org/grpc"
)

type ProcessImageRequest struct {
	ImageData   []byte `protobuf:"bytes,1,opt,name=image_data,json=imageData,proto3" json:"imageData,omitempty"`
	MimeType    string `protobuf:"bytes,2,opt,name=mime_type,json=mimeType,proto3" json:"mimeType,omitempty"`
	ProductName string `protobuf:"bytes,3,opt,name=product_name,json=productName,proto3" json:"productName,omitempty"`
}

func (m *ProcessImageRequest) Reset()         { *m = ProcessImageRequest{} }
func (m *ProcessImageRequest) String() string { return proto.CompactTextString(m) }
func (*ProcessImageRequest) ProtoMessage()    {}

type ProcessImageResponse struct {
	ProcessedImageData []byte `protobuf:"bytes,1,opt,name=processed_image_data,json=processedImageData,proto3" json:"processedImageData,omitempty"`
	MimeType           string `protobuf:"bytes,2,opt,name=mime_type,json=mimeType,proto3" json:"mimeType,omitempty"`
	Message            string `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *ProcessImageResponse) Reset()         { *m = ProcessImageResponse{} }
func (m *ProcessImageResponse) String() string { return proto.CompactTextString(m) }
func (*ProcessImageResponse) ProtoMessage()    {}

func init() {
	proto.RegisterType((*ProcessImageRequest)(nil), "image.ProcessImageRequest")
	proto.RegisterType((*ProcessImageResponse)(nil), "image.ProcessImageResponse")
}

type ImageServiceClient interface {
	ProcessImage(ctx context.Context, in *ProcessImageRequest, opts ...grpc.CallOption) (*ProcessImageResponse, error)
}

type imageServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewImageServiceClient(cc grpc.ClientConnInterface) ImageServiceClient {
	return &imageServiceClient{cc: cc}
}

func (c *imageServiceClient) ProcessImage(ctx context.Context, in *ProcessImageRequest, opts ...grpc.CallOption) (*ProcessImageResponse, error) {
	out := new(ProcessImageResponse)
	if err := c.cc.Invoke(ctx, "/image.ImageService/ProcessImage", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
