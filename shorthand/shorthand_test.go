package shorthand

import (
	"reflect"
	"testing"
)

func TestIsShorthand(t *testing.T) {
	for _, prop := range []string{"margin", "padding", "border", "border-radius", "animation", "flex", "gap", "overflow", "background"} {
		if !IsShorthand(prop) {
			t.Errorf("IsShorthand(%q) = false", prop)
		}
	}
	for _, prop := range []string{"color", "margin-top", "borderWidth", ""} {
		if IsShorthand(prop) {
			t.Errorf("IsShorthand(%q) = true", prop)
		}
	}
}

func TestExpand(t *testing.T) {
	cases := []struct {
		name     string
		property string
		value    string
		want     map[string]string
	}{
		{
			name: "margin one value", property: "margin", value: "4px",
			want: map[string]string{"marginTop": "4px", "marginRight": "4px", "marginBottom": "4px", "marginLeft": "4px"},
		},
		{
			name: "margin two values", property: "margin", value: "0 auto",
			want: map[string]string{"marginTop": "0", "marginRight": "auto", "marginBottom": "0", "marginLeft": "auto"},
		},
		{
			name: "padding three values", property: "padding", value: "1px 2px 3px",
			want: map[string]string{"paddingTop": "1px", "paddingRight": "2px", "paddingBottom": "3px", "paddingLeft": "2px"},
		},
		{
			name: "padding four values", property: "padding", value: "1px 2px 3px 4px",
			want: map[string]string{"paddingTop": "1px", "paddingRight": "2px", "paddingBottom": "3px", "paddingLeft": "4px"},
		},
		{
			name: "border full", property: "border", value: "1px solid red",
			want: map[string]string{"borderWidth": "1px", "borderStyle": "solid", "borderColor": "red"},
		},
		{
			name: "border reordered", property: "border", value: "dashed #ccc 2px",
			want: map[string]string{"borderWidth": "2px", "borderStyle": "dashed", "borderColor": "#ccc"},
		},
		{
			name: "border last wins", property: "border", value: "solid dotted red",
			want: map[string]string{"borderStyle": "dotted", "borderColor": "red"},
		},
		{
			name: "border side", property: "border-bottom", value: "thin solid currentColor",
			want: map[string]string{"borderBottomWidth": "thin", "borderBottomStyle": "solid", "borderBottomColor": "currentColor"},
		},
		{
			name: "border-radius one value", property: "border-radius", value: "8px",
			want: map[string]string{"borderTopLeftRadius": "8px", "borderTopRightRadius": "8px", "borderBottomRightRadius": "8px", "borderBottomLeftRadius": "8px"},
		},
		{
			name: "border-radius two values", property: "border-radius", value: "8px 4px",
			want: map[string]string{"borderTopLeftRadius": "8px", "borderTopRightRadius": "4px", "borderBottomRightRadius": "8px", "borderBottomLeftRadius": "4px"},
		},
		{
			name: "border-radius drops vertical radii", property: "border-radius", value: "8px / 4px",
			want: map[string]string{"borderTopLeftRadius": "8px", "borderTopRightRadius": "8px", "borderBottomRightRadius": "8px", "borderBottomLeftRadius": "8px"},
		},
		{
			name: "animation basic", property: "animation", value: "spin 2s linear infinite",
			want: map[string]string{"animationName": "spin", "animationDuration": "2s", "animationTimingFunction": "linear", "animationIterationCount": "infinite"},
		},
		{
			name: "animation duration then delay", property: "animation", value: "fade 300ms 150ms ease-out",
			want: map[string]string{"animationName": "fade", "animationDuration": "300ms", "animationDelay": "150ms", "animationTimingFunction": "ease-out"},
		},
		{
			name: "animation cubic-bezier kept whole", property: "animation", value: "slide 1s cubic-bezier(0.1, 0.7, 1, 0.1)",
			want: map[string]string{"animationName": "slide", "animationDuration": "1s", "animationTimingFunction": "cubic-bezier(0.1, 0.7, 1, 0.1)"},
		},
		{
			name: "flex none", property: "flex", value: "none",
			want: map[string]string{"flexGrow": "0", "flexShrink": "0", "flexBasis": "auto"},
		},
		{
			name: "flex auto", property: "flex", value: "auto",
			want: map[string]string{"flexGrow": "1", "flexShrink": "1", "flexBasis": "auto"},
		},
		{
			name: "flex initial", property: "flex", value: "initial",
			want: map[string]string{"flexGrow": "0", "flexShrink": "1", "flexBasis": "auto"},
		},
		{
			name: "flex single number", property: "flex", value: "2",
			want: map[string]string{"flexGrow": "2"},
		},
		{
			name: "flex grow basis", property: "flex", value: "1 30%",
			want: map[string]string{"flexGrow": "1", "flexBasis": "30%"},
		},
		{
			name: "flex three values", property: "flex", value: "1 0 auto",
			want: map[string]string{"flexGrow": "1", "flexShrink": "0", "flexBasis": "auto"},
		},
		{
			name: "gap one value", property: "gap", value: "8px",
			want: map[string]string{"rowGap": "8px", "columnGap": "8px"},
		},
		{
			name: "gap two values", property: "gap", value: "8px 16px",
			want: map[string]string{"rowGap": "8px", "columnGap": "16px"},
		},
		{
			name: "overflow two values", property: "overflow", value: "hidden auto",
			want: map[string]string{"overflowX": "hidden", "overflowY": "auto"},
		},
		{
			name: "background plain color", property: "background", value: "rebeccapurple",
			want: map[string]string{"backgroundColor": "rebeccapurple"},
		},
		{
			name: "background url not expanded", property: "background", value: "url(bg.png) no-repeat",
			want: nil,
		},
		{
			name: "background gradient not expanded", property: "background", value: "linear-gradient(to right, red, blue)",
			want: nil,
		},
		{
			name: "not a shorthand", property: "color", value: "red",
			want: nil,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Expand(c.property, c.value)
			if !reflect.DeepEqual(got, c.want) {
				t.Errorf("Expand(%q, %q) = %v, want %v", c.property, c.value, got, c.want)
			}
		})
	}
}

func TestCamelProperty(t *testing.T) {
	cases := []struct{ in, want string }{
		{"color", "color"},
		{"font-size", "fontSize"},
		{"border-top-left-radius", "borderTopLeftRadius"},
		{"-webkit-line-clamp", "webkitLineClamp"},
		{"-moz-user-select", "mozUserSelect"},
		{"-ms-overflow-style", "msOverflowStyle"},
		{"margin", "margin"},
	}
	for _, c := range cases {
		if got := CamelProperty(c.in); got != c.want {
			t.Errorf("CamelProperty(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
