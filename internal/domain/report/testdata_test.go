package report

const vitalsText = `Vital analysis report
State of health
Your score: 7.5 out of 10
You are 12 % below average
Performance potential
8.1 out of 10
15% above average
Processing of stress
6 out of 10
3 % above average
Burnout resistance
5.5 out of 10
20 % below average
Dynamic A 12,5 BpM
Dynamic B -3,4 BpM
Your current biological age is 41 years
which is 5 % older than your calendar age
`

const overviewText = "Vital analysis overview\nGeneral vitality index 7,8\nMinimum heart rate 48 BpM\nMaximum heart rate 162 BpM\n\fSecond page\n"

const medAnalysisText = `HRV Medical Analysis
Jane Roe 1980-05-17
Measurement
Date: 01.01.2024 08:00 Duration 24h
` + "\f" + `Spectral analysis
Summary
Beats
Heart beats 98,765 total
Rhythm
Spectrum
Parameter Day Night
TP 2,345.67 1,234.50
ULF 123.45 12.3 % 98.76
VLF 234.56 20.1 % 210.11
LF 345.67 30.2 % 300.12
HF 456.78 37.4 % 400.13
pNN50 12.34 20.45
SDNN 45.67 55.12
RMSSD 34.56 44.44
`
