package plantuml

// DefaultSource is the diagram a freshly placed node starts with.
const DefaultSource = "@startuml\n  Bob -> Alice : hello\n@enduml"

// DefaultSVG is the rendering of DefaultSource, so a new node displays a
// diagram before the rendering service has ever been contacted.
const DefaultSVG = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" contentStyleType="text/css" data-diagram-type="SEQUENCE" height="120px" preserveAspectRatio="none" style="width:110px;height:120px;background:#FFFFFF;" version="1.1" viewBox="0 0 110 120" width="110px" zoomAndPan="magnify">
  <defs/>
  <g>
    <g>
      <title>Bob</title>
      <rect fill="#000000" fill-opacity="0.00000" height="49.1328" width="8" x="21.5283" y="36.2969"/>
      <line style="stroke:#181818;stroke-width:0.5;stroke-dasharray:5,5;" x1="25" x2="25" y1="36.2969" y2="85.4297"/>
    </g>
    <g>
      <title>Alice</title>
      <rect fill="#000000" fill-opacity="0.00000" height="49.1328" width="8" x="76.9429" y="36.2969"/>
      <line style="stroke:#181818;stroke-width:0.5;stroke-dasharray:5,5;" x1="80.1094" x2="80.1094" y1="36.2969" y2="85.4297"/>
    </g>
    <g class="participant participant-head" data-participant="Bob">
      <rect fill="#E2E2F0" height="30.2969" rx="2.5" ry="2.5" style="stroke:#181818;stroke-width:0.5;" width="41.0566" x="5" y="5"/>
      <text fill="#000000" font-family="sans-serif" font-size="14" lengthAdjust="spacing" textLength="27.0566" x="12" y="24.9951">Bob</text>
    </g>
    <g class="participant participant-tail" data-participant="Bob">
      <rect fill="#E2E2F0" height="30.2969" rx="2.5" ry="2.5" style="stroke:#181818;stroke-width:0.5;" width="41.0566" x="5" y="84.4297"/>
      <text fill="#000000" font-family="sans-serif" font-size="14" lengthAdjust="spacing" textLength="27.0566" x="12" y="104.4248">Bob</text>
    </g>
    <g class="participant participant-head" data-participant="Alice">
      <rect fill="#E2E2F0" height="30.2969" rx="2.5" ry="2.5" style="stroke:#181818;stroke-width:0.5;" width="47.667" x="57.1094" y="5"/>
      <text fill="#000000" font-family="sans-serif" font-size="14" lengthAdjust="spacing" textLength="33.667" x="64.1094" y="24.9951">Alice</text>
    </g>
    <g class="participant participant-tail" data-participant="Alice">
      <rect fill="#E2E2F0" height="30.2969" rx="2.5" ry="2.5" style="stroke:#181818;stroke-width:0.5;" width="47.667" x="57.1094" y="84.4297"/>
      <text fill="#000000" font-family="sans-serif" font-size="14" lengthAdjust="spacing" textLength="33.667" x="64.1094" y="104.4248">Alice</text>
    </g>
    <g class="message" data-participant-1="Bob" data-participant-2="Alice">
      <polygon fill="#181818" points="68.9429,63.4297,78.9429,67.4297,68.9429,71.4297,72.9429,67.4297" style="stroke:#181818;stroke-width:1;"/>
      <line style="stroke:#181818;stroke-width:1;" x1="25.5283" x2="74.9429" y1="67.4297" y2="67.4297"/>
      <text fill="#000000" font-family="sans-serif" font-size="13" lengthAdjust="spacing" textLength="31.4146" x="32.5283" y="62.3638">hello</text>
    </g>
    <!--SRC=[SyfFKj2rKt3CoKnELR1Io4ZDoSa70000]-->
  </g>
</svg>`
