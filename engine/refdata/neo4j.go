package refdata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/WessleyAI/wessley-autocost/engine/listing"
)

// result is the minimal interface needed from a neo4j result.
type result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
	Err() error
}

// runner is the minimal interface needed from a neo4j session.
type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (result, error)
	Close(ctx context.Context) error
}

type sessionAdapter struct {
	sess neo4j.SessionWithContext
}

func (a *sessionAdapter) Run(ctx context.Context, cypher string, params map[string]any) (result, error) {
	return a.sess.Run(ctx, cypher, params)
}

func (a *sessionAdapter) Close(ctx context.Context) error {
	return a.sess.Close(ctx)
}

// rank orders entries: lower ranks are matched first.
const loadCypher = `MATCH (v:ReferenceVehicle)
RETURN v.id AS id, v.keywords AS keywords,
       v.maintenance AS maintenance, v.insurance AS insurance, v.reliability AS reliability,
       v.consumption_petrol AS petrol, v.consumption_diesel AS diesel,
       v.consumption_hybrid AS hybrid, v.consumption_electric AS electric,
       v.known_issues AS known_issues, v.advice AS advice
ORDER BY v.rank ASC, v.id ASC`

// LoadNeo4j reads reference vehicles from (:ReferenceVehicle) nodes. The
// segment table is always the built-in one.
func LoadNeo4j(ctx context.Context, driver neo4j.DriverWithContext) (*Catalog, error) {
	sess := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	return load(ctx, &sessionAdapter{sess: sess})
}

// Neo4jConfig locates the reference graph. An empty URL means none.
type Neo4jConfig struct {
	URL, User, Pass string
}

// LoadTimeout bounds a catalog load at startup.
const LoadTimeout = 10 * time.Second

// LoadOrDefault loads the catalog from Neo4j when configured. Any failure is
// logged and the built-in catalog is returned instead.
func LoadOrDefault(ctx context.Context, cfg Neo4jConfig, log *slog.Logger) *Catalog {
	if cfg.URL == "" {
		return Default()
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URL, neo4j.BasicAuth(cfg.User, cfg.Pass, ""))
	if err != nil {
		log.Warn("neo4j driver, using built-in catalog", "err", err)
		return Default()
	}
	defer driver.Close(ctx)

	loadCtx, cancel := context.WithTimeout(ctx, LoadTimeout)
	defer cancel()
	c, err := LoadNeo4j(loadCtx, driver)
	return orDefault(log, c, err)
}

func orDefault(log *slog.Logger, c *Catalog, err error) *Catalog {
	if err != nil {
		log.Warn("neo4j catalog load failed, using built-in catalog", "err", err)
		return Default()
	}
	log.Info("catalog loaded from neo4j", "vehicles", c.Len())
	return c
}

func load(ctx context.Context, r runner) (*Catalog, error) {
	defer r.Close(ctx)

	res, err := r.Run(ctx, loadCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("refdata: load vehicles: %w", err)
	}

	var vehicles []Vehicle
	for res.Next(ctx) {
		v, err := vehicleFromRecord(res.Record())
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("refdata: iterate vehicles: %w", err)
	}
	return NewCatalog(vehicles, nil), nil
}

func vehicleFromRecord(rec *neo4j.Record) (Vehicle, error) {
	id := getString(rec, "id")
	if id == "" {
		return Vehicle{}, fmt.Errorf("refdata: reference vehicle without id")
	}
	keywords := getStrings(rec, "keywords")
	if len(keywords) == 0 {
		return Vehicle{}, fmt.Errorf("refdata: reference vehicle %s has no keywords", id)
	}

	v := Vehicle{
		ID:          id,
		Keywords:    keywords,
		Maintenance: getFloat(rec, "maintenance"),
		Insurance:   getFloat(rec, "insurance"),
		Reliability: getFloat(rec, "reliability"),
		KnownIssues: getStrings(rec, "known_issues"),
		Advice:      getString(rec, "advice"),
	}
	for key, pt := range map[string]listing.Powertrain{
		"petrol":   listing.Petrol,
		"diesel":   listing.Diesel,
		"hybrid":   listing.Hybrid,
		"electric": listing.Electric,
	} {
		if c := getFloat(rec, key); c > 0 {
			if v.Consumption == nil {
				v.Consumption = make(map[listing.Powertrain]float64)
			}
			v.Consumption[pt] = c
		}
	}
	return v, nil
}

func getString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

func getFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func getStrings(rec *neo4j.Record, key string) []string {
	v, _ := rec.Get(key)
	raw, _ := v.([]any)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
