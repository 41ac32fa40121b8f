package ocr

// Wire types mirroring the image analysis service's JSON. Kept separate from
// the exported result types so the service's field naming never leaks into
// the rest of the application.

type analyzeResponse struct {
	ModelVersion string `json:"modelVersion"`
	Metadata     struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"metadata"`
	ReadResult *wireReadResult `json:"readResult"`
}

type wireReadResult struct {
	Blocks []wireBlock `json:"blocks"`
}

type wireBlock struct {
	Lines []wireLine `json:"lines"`
}

type wireLine struct {
	Text            string      `json:"text"`
	BoundingPolygon []wirePoint `json:"boundingPolygon"`
	Words           []wireWord  `json:"words"`
}

type wireWord struct {
	Text            string      `json:"text"`
	BoundingPolygon []wirePoint `json:"boundingPolygon"`
	Confidence      float64     `json:"confidence"`
}

type wirePoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// serviceFault is the error envelope the service attaches to non-2xx
// responses.
type serviceFault struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// toResult converts the wire response into the exported result model.
func (a *analyzeResponse) toResult() *RecognitionResult {
	result := &RecognitionResult{
		ModelVersion: a.ModelVersion,
		ImageWidth:   a.Metadata.Width,
		ImageHeight:  a.Metadata.Height,
		Blocks:       []TextBlock{},
	}

	if a.ReadResult == nil {
		return result
	}

	for _, wb := range a.ReadResult.Blocks {
		block := TextBlock{Lines: make([]TextLine, 0, len(wb.Lines))}
		for _, wl := range wb.Lines {
			line := TextLine{
				Text:    wl.Text,
				Polygon: toPoints(wl.BoundingPolygon),
			}
			for _, ww := range wl.Words {
				line.Words = append(line.Words, Word{
					Text:       ww.Text,
					Polygon:    toPoints(ww.BoundingPolygon),
					Confidence: ww.Confidence,
				})
			}
			block.Lines = append(block.Lines, line)
		}
		result.Blocks = append(result.Blocks, block)
	}

	return result
}

func toPoints(wire []wirePoint) []Point {
	points := make([]Point, len(wire))
	for i, p := range wire {
		points[i] = Point{X: p.X, Y: p.Y}
	}
	return points
}
