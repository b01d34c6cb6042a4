package main

import (
	"context"

	"pigeon/internal/logger"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type handlerFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// newHandler serves API Gateway proxy events with the webhook engine.
func newHandler(engine *gin.Engine) handlerFunc {
	adapter := ginadapter.New(engine)

	return func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		resp, err := adapter.ProxyWithContext(ctx, req)
		if err != nil {
			fields := []zap.Field{zap.Error(err), zap.String("path", req.Path)}
			if lc, ok := lambdacontext.FromContext(ctx); ok {
				fields = append(fields, zap.String("request_id", lc.AwsRequestID))
			}
			logger.GetLogger().Error("failed to proxy request", fields...)
		}
		return resp, err
	}
}
