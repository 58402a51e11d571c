package canvas

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed scene.svg.tmpl
var sceneTemplate string

var svgTemplate = template.Must(template.New("scene").Funcs(template.FuncMap{
	"num":    formatNum,
	"top":    func(h float64) float64 { return -h / 2 },
	"badgeX": func(w float64) float64 { return w - 20 },
	"badgeY": func(h float64) float64 { return -h/2 + 10 },
	// description baselines sit below the label, 12px apart
	"descY": func(i int) float64 { return 5 + 12*float64(i+1) },
}).Parse(sceneTemplate))

type svgView struct {
	Scene
	Transform string
}

// WriteSVG encodes the scene as a standalone SVG document viewed through t
func (s Scene) WriteSVG(w io.Writer, t Transform) error {
	if err := svgTemplate.Execute(w, svgView{Scene: s, Transform: t.String()}); err != nil {
		return fmt.Errorf("failed to render svg: %w", err)
	}
	return nil
}
