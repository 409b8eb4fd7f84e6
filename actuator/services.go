package actuator

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/skekre98/locator/core"
	"github.com/skekre98/locator/web"
)

type serviceView struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Declared     bool   `json:"declared"`
	Abstract     bool   `json:"abstract"`
	Instantiated bool   `json:"instantiated"`
}

type paramView struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Type       string `json:"type,omitempty"`
	HasDefault bool   `json:"hasDefault"`
}

type serviceDetail struct {
	serviceView
	Params []paramView `json:"params"`
}

func registerServices(r web.Router, c *core.Container) {
	r.GET("/services", func(ctx *gin.Context) {
		defs := c.Definitions()
		names := make([]string, 0, len(defs))
		for name := range defs {
			names = append(names, name)
		}
		slices.Sort(names)

		out := make([]serviceView, 0, len(names))
		for _, name := range names {
			v, _ := describe(c, name, defs[name])
			out = append(out, v.serviceView)
		}
		ctx.JSON(http.StatusOK, out)
	})

	r.GET("/services/:name", func(ctx *gin.Context) {
		name := ctx.Param("name")
		t, err := c.GetDefinition(name)
		if err != nil {
			problem(ctx, err)
			return
		}
		v, _ := describe(c, name, t)
		ctx.JSON(http.StatusOK, v)
	})

	r.POST("/services/:name/resolve", func(ctx *gin.Context) {
		name := ctx.Param("name")
		inst, err := c.Get(name)
		if err != nil {
			problem(ctx, err)
			return
		}
		t, _ := c.GetDefinition(name)
		ctx.JSON(http.StatusOK, gin.H{
			"name":   name,
			"type":   t.String(),
			"goType": fmt.Sprintf("%T", inst),
		})
	})
}

func describe(c *core.Container, name string, t core.TypeID) (serviceDetail, bool) {
	d := serviceDetail{
		serviceView: serviceView{
			Name:         name,
			Type:         t.String(),
			Instantiated: c.HasInstance(t),
		},
		Params: []paramView{},
	}
	info, ok := c.Types().Lookup(t)
	if !ok {
		return d, false
	}
	d.Declared = true
	d.Abstract = info.Abstract
	for _, p := range info.Params {
		d.Params = append(d.Params, paramView{
			Name:       p.Name,
			Kind:       p.Kind.String(),
			Type:       p.Type.String(),
			HasDefault: p.HasDefault,
		})
	}
	return d, true
}

// problem maps resolution errors to HTTP statuses.
func problem(ctx *gin.Context, err error) {
	kind := core.ErrorKind(err)
	status := http.StatusInternalServerError
	switch kind {
	case "not_found":
		status = http.StatusNotFound
	case "not_instantiable", "unresolvable_default":
		status = http.StatusUnprocessableEntity
	case "cyclic_dependency":
		status = http.StatusConflict
	}
	web.Problem(ctx, status, err.Error(), "kind", kind)
}
