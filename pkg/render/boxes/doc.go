// Package boxes draws a layout snapshot as nested text boxes for the
// terminal, scaled from pixels to columns.
//
//	fmt.Println(boxes.Render(snap, boxes.Options{Columns: 100, Viewport: 1700}))
//
// Each panel group becomes a bordered box listing its tabs, the foreground
// tab marked with ▸; the active group gets a thick border.
package boxes
