package svexport

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"oss.terrastruct.com/util-go/xdefer"

	"github.com/structview/structview/svanimate"
	"github.com/structview/structview/svdiagram"
	"github.com/structview/structview/svsvg"
)

// AnimatedSVG exports one frame per animation step, shown in turn for
// interval each through CSS keyframes, looping forever.
func AnimatedSVG(ctx context.Context, d *svdiagram.Diagram, interval time.Duration, opts *Opts) (_ []byte, err error) {
	defer xdefer.Errorf(&err, "failed to export animated SVG")
	if d.State() != svdiagram.StateRendered {
		return nil, fmt.Errorf("diagram is %s", d.State())
	}
	a := d.Animation()
	if a == nil || a.Len() == 0 {
		return nil, fmt.Errorf("view %q has no animation", d.View().Key)
	}
	if interval <= 0 {
		interval = svanimate.DefaultInterval
	}
	if opts == nil {
		opts = &Opts{}
	}
	state := d.SaveUIState()
	defer d.RestoreUIState(state)
	d.ResetUIState()
	defer a.Stop(ctx)

	s := d.Scene()
	vb := opts.viewBox(s)
	var frames [][]byte
	for ok := a.Start(ctx); ok; ok = a.StepForward(ctx) {
		frame, err := svsvg.Render(s, &svsvg.RenderOpts{
			Salt:    fmt.Sprintf("frame-%d-%s", len(frames), s.ID),
			Image:   d.ImageHref,
			Hide:    opts.hide(),
			ViewBox: vb,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to render frame %d: %w", len(frames), err)
		}
		frames = append(frames, bytes.TrimPrefix(frame, []byte(xmlHeader)))
	}

	n := len(frames)
	total := interval.Seconds() * float64(n)
	prefix := svsvg.IDPrefix("animation-" + s.ID)
	buf := &bytes.Buffer{}
	buf.WriteString(xmlHeader)
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" id="%s" width="%v" height="%v" viewBox="%v %v %v %v">`,
		prefix, vb.Width, vb.Height, vb.TopLeft.X, vb.TopLeft.Y, vb.Width, vb.Height)
	buf.WriteString(`<style type="text/css"><![CDATA[`)
	for i := range frames {
		buf.WriteString(frameKeyframes(prefix, i, n))
		fmt.Fprintf(buf, "#%s .frame-%d { opacity: 0; animation: %s-frame-%d %vs step-end infinite; }\n", prefix, i, prefix, i, total)
	}
	buf.WriteString(`]]></style>`)
	for i, f := range frames {
		fmt.Fprintf(buf, `<g class="frame frame-%d">`, i)
		buf.Write(f)
		buf.WriteString(`</g>`)
	}
	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}

// frameKeyframes shows frame i of n during its share of the cycle.
func frameKeyframes(prefix string, i, n int) string {
	from := 100 * float64(i) / float64(n)
	to := 100 * float64(i+1) / float64(n)
	var b strings.Builder
	fmt.Fprintf(&b, "@keyframes %s-frame-%d {", prefix, i)
	if i > 0 {
		b.WriteString(" 0% { opacity: 0; }")
	}
	fmt.Fprintf(&b, " %v%% { opacity: 1; }", from)
	if i < n-1 {
		fmt.Fprintf(&b, " %v%% { opacity: 0; }", to)
	} else {
		b.WriteString(" 100% { opacity: 1; }")
	}
	b.WriteString(" }\n")
	return b.String()
}
