package endpoint

import (
	"context"
	"errors"

	"github.com/Ruscigno/AlphaPulse/pkg/service"
	"github.com/go-kit/kit/endpoint"
)

// Endpoints holds all Go-Kit endpoints.
type Endpoints struct {
	ValidateAndBuild endpoint.Endpoint
	ListFunctions    endpoint.Endpoint
	GetFunction      endpoint.Endpoint
	FetchData        endpoint.Endpoint
	ReloadSchema     endpoint.Endpoint
	ListRequests     endpoint.Endpoint
	CheckHealth      endpoint.Endpoint
}

// MakeEndpoints creates endpoints for the service.
func MakeEndpoints(s service.Service) Endpoints {
	return Endpoints{
		ValidateAndBuild: makeValidateAndBuildEndpoint(s),
		ListFunctions:    makeListFunctionsEndpoint(s),
		GetFunction:      makeGetFunctionEndpoint(s),
		FetchData:        makeFetchDataEndpoint(s),
		ReloadSchema:     makeReloadSchemaEndpoint(s),
		ListRequests:     makeListRequestsEndpoint(s),
		CheckHealth:      makeCheckHealthEndpoint(s),
	}
}

func makeValidateAndBuildEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(service.BuildRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}
		return s.ValidateAndBuild(ctx, req)
	}
}

func makeListFunctionsEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return s.ListFunctions(ctx)
	}
}

func makeGetFunctionEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		id, ok := request.(string)
		if !ok {
			return nil, errors.New("invalid request")
		}
		return s.GetFunction(ctx, id)
	}
}

func makeFetchDataEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req, ok := request.(service.FetchRequest)
		if !ok {
			return nil, errors.New("invalid request")
		}
		return s.FetchData(ctx, req)
	}
}

func makeReloadSchemaEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return s.ReloadSchema(ctx)
	}
}

func makeListRequestsEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		limit, ok := request.(int)
		if !ok {
			return nil, errors.New("invalid request")
		}
		return s.ListRequests(ctx, limit)
	}
}

func makeCheckHealthEndpoint(s service.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		return s.CheckHealth(ctx)
	}
}
