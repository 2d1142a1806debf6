package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/wiedertv/BizAway-code-challenge/internal/core/domain"
)

var rankingModeEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "RankingMode",
	Values: graphql.EnumValueConfigMap{
		"CHEAPEST": &graphql.EnumValueConfig{Value: string(domain.RankCheapest)},
		"FASTEST":  &graphql.EnumValueConfig{Value: string(domain.RankFastest)},
	},
})

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	tripType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Trip",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String, Resolve: tripField(func(t domain.Trip) any { return t.ID })},
			"origin":       &graphql.Field{Type: graphql.String, Resolve: tripField(func(t domain.Trip) any { return t.Origin })},
			"destination":  &graphql.Field{Type: graphql.String, Resolve: tripField(func(t domain.Trip) any { return t.Destination })},
			"cost":         &graphql.Field{Type: graphql.Float, Resolve: tripField(func(t domain.Trip) any { return t.Cost })},
			"duration":     &graphql.Field{Type: graphql.Float, Resolve: tripField(func(t domain.Trip) any { return t.Duration })},
			"type":         &graphql.Field{Type: graphql.String, Resolve: tripField(func(t domain.Trip) any { return t.Type })},
			"display_name": &graphql.Field{Type: graphql.String, Resolve: tripField(func(t domain.Trip) any { return t.DisplayName })},
		},
	})

	savedTripType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SavedTrip",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String, Resolve: savedField(func(t domain.SavedTrip) any { return t.ID })},
			"trip_id":      &graphql.Field{Type: graphql.String, Resolve: savedField(func(t domain.SavedTrip) any { return t.TripID })},
			"origin":       &graphql.Field{Type: graphql.String, Resolve: savedField(func(t domain.SavedTrip) any { return t.Origin })},
			"destination":  &graphql.Field{Type: graphql.String, Resolve: savedField(func(t domain.SavedTrip) any { return t.Destination })},
			"cost":         &graphql.Field{Type: graphql.Float, Resolve: savedField(func(t domain.SavedTrip) any { return t.Cost })},
			"duration":     &graphql.Field{Type: graphql.Float, Resolve: savedField(func(t domain.SavedTrip) any { return t.Duration })},
			"type":         &graphql.Field{Type: graphql.String, Resolve: savedField(func(t domain.SavedTrip) any { return t.Type })},
			"display_name": &graphql.Field{Type: graphql.String, Resolve: savedField(func(t domain.SavedTrip) any { return t.DisplayName })},
			"saved_at":     &graphql.Field{Type: graphql.DateTime, Resolve: savedField(func(t domain.SavedTrip) any { return t.SavedAt })},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"trips": &graphql.Field{
				Type:        graphql.NewList(tripType),
				Description: "Search trips between two airports, ranked by cost or duration",
				Args: graphql.FieldConfigArgument{
					"origin":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"destination": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"sort_by":     &graphql.ArgumentConfig{Type: rankingModeEnum, DefaultValue: string(domain.RankCheapest)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					criteria := domain.NewSearchCriteria(
						p.Args["origin"].(string),
						p.Args["destination"].(string),
						domain.RankingMode(p.Args["sort_by"].(string)),
					)
					trips, err := deps.Search.Search(p.Context, criteria)
					if errors.Is(err, domain.ErrSearchFailed) {
						return nil, domain.ErrSearchFailed
					}
					return trips, err
				},
			},
			"savedTrips": &graphql.Field{
				Type:        graphql.NewList(savedTripType),
				Description: "Trips saved under a session, newest first",
				Args: graphql.FieldConfigArgument{
					"session": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.SavedTrips.ListBySession(p.Context, p.Args["session"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func tripField(get func(domain.Trip) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if t, ok := p.Source.(domain.Trip); ok {
			return get(t), nil
		}
		return nil, nil
	}
}

func savedField(get func(domain.SavedTrip) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if t, ok := p.Source.(domain.SavedTrip); ok {
			return get(t), nil
		}
		return nil, nil
	}
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
