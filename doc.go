/*
go-trafficflow turns a stream of per frame object detections into a
continuously updated traffic congestion assessment.

The library maintains per object track state with bounded memory and
deterministic aging (package tracker), converts raw pixel motion into
calibrated real world speed with outlier smoothing (package speed), and
fuses density, speed, flow and queueing signals into a classified
congestion level (package congestion).  The Pipeline in this package owns
one instance of each and applies the full cycle per frame.

Object detection itself is an external collaborator, the caller supplies
(track id, bounding box, class) tuples per frame from whatever detector
and tracker they run upstream.

See example code and usage in the example subdirectory.
*/
package trafficflow
